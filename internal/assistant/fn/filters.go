package fn

import (
	"fmt"
	"strconv"

	"ledgerly/internal/assistant"
	"ledgerly/internal/domain/repositories"
)

// transactionFilterFromParams maps the shared filter arguments onto a
// repository filter. A non-nil ErrorResult means the arguments were
// malformed in a way the model can correct.
func transactionFilterFromParams(params map[string]any) (*repositories.TransactionFilter, *assistant.ErrorResult) {
	filter := repositories.TransactionFilter{
		IDs:           stringSliceParam(params, "transaction_ids"),
		Search:        stringParam(params, "search"),
		AccountNames:  stringSliceParam(params, "accounts"),
		CategoryNames: stringSliceParam(params, "categories"),
		MerchantNames: stringSliceParam(params, "merchants"),
		TagNames:      stringSliceParam(params, "tags"),
		Types:         stringSliceParam(params, "types"),
	}

	start, ok := dateParam(params, "start_date")
	if !ok {
		result := errorf("Invalid start_date '%s', expected YYYY-MM-DD", stringParam(params, "start_date"))
		return nil, &result
	}
	filter.StartDate = start

	end, ok := dateParam(params, "end_date")
	if !ok {
		result := errorf("Invalid end_date '%s', expected YYYY-MM-DD", stringParam(params, "end_date"))
		return nil, &result
	}
	filter.EndDate = end

	if raw := stringParam(params, "amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			result := errorf("Invalid amount '%s', expected a number", raw)
			return nil, &result
		}
		filter.Amount = &amount
		filter.AmountOperator = stringParam(params, "amount_operator")
		if filter.AmountOperator == "" {
			filter.AmountOperator = "equal"
		}
	}

	return &filter, nil
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
}

func formatMoney(amount float64, currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", symbol, amount)
	}
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
