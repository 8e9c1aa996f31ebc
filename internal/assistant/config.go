package assistant

import (
	_ "embed"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configYAML []byte

// Config holds the assistant's declarative behavior: the instructions
// template and the thinking indicator text shown while functions run.
type Config struct {
	Instructions           string            `yaml:"instructions"`
	DefaultThinkingMessage string            `yaml:"default_thinking_message"`
	ThinkingMessages       map[string]string `yaml:"thinking_messages"`
}

// LoadConfig parses the embedded configuration.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(configYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse assistant config: %w", err)
	}
	if cfg.Instructions == "" {
		return nil, fmt.Errorf("assistant config missing instructions")
	}
	return &cfg, nil
}

// Preferences carries the formatting preferences substituted into the
// instructions template.
type Preferences struct {
	CurrencySymbol string
	CurrencyCode   string
	DateFormat     string
}

// InstructionsFor renders the instructions for a turn, substituting the
// preferences and the current date.
func (c *Config) InstructionsFor(prefs Preferences, now time.Time) string {
	replacer := strings.NewReplacer(
		"{{currency_symbol}}", prefs.CurrencySymbol,
		"{{currency_code}}", prefs.CurrencyCode,
		"{{date_format}}", prefs.DateFormat,
		"{{current_date}}", now.Format("2006-01-02"),
	)
	return replacer.Replace(c.Instructions)
}

// ThinkingMessage composes the indicator text for a round of function
// calls. Unknown function names fall back to a humanized generic message;
// multiple messages are joined with spaces.
func (c *Config) ThinkingMessage(functionNames []string) string {
	if len(functionNames) == 0 {
		return c.DefaultThinkingMessage
	}
	messages := make([]string, len(functionNames))
	for i, name := range functionNames {
		if msg, ok := c.ThinkingMessages[name]; ok {
			messages[i] = msg
		} else {
			messages[i] = fmt.Sprintf("Processing %s...", humanize(name))
		}
	}
	return strings.Join(messages, " ")
}

// humanize turns a snake_case function name into lowercase prose, e.g.
// "get_cash_flow" becomes "get cash flow".
func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, word := range words {
		words[i] = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
	}
	return strings.TrimSpace(strings.Join(words, " "))
}
