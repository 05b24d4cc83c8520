package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/system.txt
var systemRaw string

// Describer renders the intent table appended to the base prompt.
type Describer interface {
	Describe() string
}

// Base returns the trimmed base instruction without the intent table.
func Base() string {
	return strings.TrimSpace(systemRaw)
}

// BuildSystemPrompt joins the base instruction and the intent table.
func BuildSystemPrompt(intents Describer) string {
	base := Base()
	if intents == nil {
		return base
	}
	table := strings.TrimSpace(intents.Describe())
	if table == "" {
		return base
	}
	return base + "\n\n" + table
}
