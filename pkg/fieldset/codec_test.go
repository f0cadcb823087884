package fieldset

import (
	"testing"
	"time"
)

func TestDecodeTypedValues(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		stored    string
		fieldType FieldType
		expected  any
	}{
		{name: "Text", stored: "hello", fieldType: FieldTypeText, expected: "hello"},
		{name: "Textarea", stored: "multi\nline", fieldType: FieldTypeTextarea, expected: "multi\nline"},
		{name: "Choice", stored: "870", fieldType: FieldTypeChoice, expected: "870"},
		{name: "Integer", stored: "42", fieldType: FieldTypeInteger, expected: int64(42)},
		{name: "Negative integer", stored: "-7", fieldType: FieldTypeInteger, expected: int64(-7)},
		{name: "Integer fallback", stored: "not_a_number", fieldType: FieldTypeInteger, expected: "not_a_number"},
		{name: "Decimal", stored: "3.14", fieldType: FieldTypeDecimal, expected: 3.14},
		{name: "Decimal fallback", stored: "abc", fieldType: FieldTypeDecimal, expected: "abc"},
		{name: "Date", stored: "2024-01-15", fieldType: FieldTypeDate, expected: date},
		{name: "Date fallback", stored: "15.01.2024", fieldType: FieldTypeDate, expected: "15.01.2024"},
		{name: "Empty decodes to nil", stored: "", fieldType: FieldTypeInteger, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.stored, tt.fieldType)
			if got != tt.expected {
				t.Errorf("Decode(%q, %s) = %v (%T), expected %v (%T)",
					tt.stored, tt.fieldType, got, got, tt.expected, tt.expected)
			}
		})
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		raw       string
		fieldType FieldType
		expected  any
	}{
		{"42", FieldTypeInteger, int64(42)},
		{"2.5", FieldTypeDecimal, 2.5},
		{"true", FieldTypeBoolean, true},
		{"2024-01-15", FieldTypeDate, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"plain", FieldTypeText, "plain"},
	}

	for _, tt := range tests {
		if got := Decode(Encode(tt.raw, tt.fieldType), tt.fieldType); got != tt.expected {
			t.Errorf("round trip for %q (%s): got %v, expected %v", tt.raw, tt.fieldType, got, tt.expected)
		}
	}
}

func TestDecodeBooleanIsTotal(t *testing.T) {
	trueTokens := []string{"true", "True", "TRUE", "1", "yes", "Yes", "on", "On", "ON"}
	for _, token := range trueTokens {
		if got := Decode(token, FieldTypeBoolean); got != true {
			t.Errorf("Decode(%q, boolean) = %v, expected true", token, got)
		}
	}

	falseTokens := []string{"false", "0", "no", "off", "anything_else", "2", "ja"}
	for _, token := range falseTokens {
		if got := Decode(token, FieldTypeBoolean); got != false {
			t.Errorf("Decode(%q, boolean) = %v, expected false", token, got)
		}
	}

	if got := Decode("", FieldTypeBoolean); got != nil {
		t.Errorf("Decode(\"\", boolean) = %v, expected nil", got)
	}
}
