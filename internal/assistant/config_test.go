package assistant

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultThinkingMessage == "" {
		t.Error("expected a default thinking message")
	}
	if _, ok := cfg.ThinkingMessages["get_transactions"]; !ok {
		t.Error("expected a thinking message for get_transactions")
	}
}

func TestInstructionsForSubstitutesPreferences(t *testing.T) {
	cfg := &Config{Instructions: "Currency: {{currency_symbol}} ({{currency_code}}), dates as {{date_format}}, today is {{current_date}}."}

	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	got := cfg.InstructionsFor(Preferences{
		CurrencySymbol: "$",
		CurrencyCode:   "USD",
		DateFormat:     "%m-%d-%Y",
	}, now)

	want := "Currency: $ (USD), dates as %m-%d-%Y, today is 2026-03-14."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestThinkingMessage(t *testing.T) {
	cfg := &Config{
		DefaultThinkingMessage: "Analyzing your data...",
		ThinkingMessages: map[string]string{
			"get_transactions": "Searching transactions...",
			"create_rule":      "Setting up automation rule...",
		},
	}

	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"empty", nil, "Analyzing your data..."},
		{"known", []string{"get_transactions"}, "Searching transactions..."},
		{"multiple joined with spaces", []string{"get_transactions", "create_rule"},
			"Searching transactions... Setting up automation rule..."},
		{"unknown humanized", []string{"get_cash_flow"}, "Processing get cash flow..."},
		{"mixed", []string{"get_transactions", "web_search"},
			"Searching transactions... Processing web search..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ThinkingMessage(tt.names); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmbeddedInstructionsRenderWithoutLeftoverPlaceholders(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	rendered := cfg.InstructionsFor(Preferences{
		CurrencySymbol: "€",
		CurrencyCode:   "EUR",
		DateFormat:     "%d.%m.%Y",
	}, time.Now())
	if strings.Contains(rendered, "{{") {
		t.Errorf("rendered instructions contain unsubstituted placeholders")
	}
	if !strings.Contains(rendered, "EUR") {
		t.Errorf("rendered instructions missing currency code")
	}
}
