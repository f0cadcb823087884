package fieldset

import (
	"regexp"
	"strings"
)

var fieldNameInvalidChars = regexp.MustCompile(`[^a-z0-9_]`)

// CleanFieldName normalizes a user-entered field name into the internal key
// format: lowercase, spaces replaced with underscores, anything outside
// [a-z0-9_] dropped, and a "field_" prefix when the result does not start
// with a letter. CSV import keeps column names verbatim and does not go
// through this function.
func CleanFieldName(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = fieldNameInvalidChars.ReplaceAllString(cleaned, "")

	if cleaned != "" && (cleaned[0] < 'a' || cleaned[0] > 'z') {
		cleaned = "field_" + cleaned
	}
	return cleaned
}

// ChoiceOption is one selectable option of a choice field.
type ChoiceOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SplitChoices parses a manual comma-separated choice list: whitespace
// trimmed, empty items dropped, order preserved.
func SplitChoices(choices string) []ChoiceOption {
	if strings.TrimSpace(choices) == "" {
		return nil
	}

	var options []ChoiceOption
	for _, raw := range strings.Split(choices, ",") {
		choice := strings.TrimSpace(raw)
		if choice == "" {
			continue
		}
		options = append(options, ChoiceOption{Value: choice, Label: choice})
	}
	return options
}
