package fieldset

import (
	"reflect"
	"testing"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter rune
		expected  Table
	}{
		{
			name:      "Basic CSV",
			content:   "header1,header2\nvalue1,value2\nvalue3,value4",
			delimiter: ',',
			expected: Table{
				Headers: []string{"header1", "header2"},
				Rows: []map[string]string{
					{"header1": "value1", "header2": "value2"},
					{"header1": "value3", "header2": "value4"},
				},
			},
		},
		{
			name:      "Semicolon delimited",
			content:   "id;x;y\nA1;16.3;48.2",
			delimiter: ';',
			expected: Table{
				Headers: []string{"id", "x", "y"},
				Rows: []map[string]string{
					{"id": "A1", "x": "16.3", "y": "48.2"},
				},
			},
		},
		{
			name:      "Missing values padded",
			content:   "header1,header2\nvalue1\nvalue3,value4",
			delimiter: ',',
			expected: Table{
				Headers: []string{"header1", "header2"},
				Rows: []map[string]string{
					{"header1": "value1", "header2": ""},
					{"header1": "value3", "header2": "value4"},
				},
			},
		},
		{
			name:      "Duplicate headers renamed",
			content:   "name,name\na,b",
			delimiter: ',',
			expected: Table{
				Headers: []string{"name", "name_1"},
				Rows: []map[string]string{
					{"name": "a", "name_1": "b"},
				},
			},
		},
		{
			name:      "Empty input",
			content:   "",
			delimiter: ',',
			expected:  Table{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(tt.content, tt.delimiter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestCleanFieldName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Usage Code", "usage_code"},
		{"ALREADY_OK", "already_ok"},
		{"2016_NUTZUNG", "field_2016_nutzung"},
		{"weird!@#chars", "weirdchars"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		if got := CleanFieldName(tt.input); got != tt.expected {
			t.Errorf("CleanFieldName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSplitChoices(t *testing.T) {
	got := SplitChoices(" red , green ,, blue ")
	expected := []ChoiceOption{
		{Value: "red", Label: "red"},
		{Value: "green", Label: "green"},
		{Value: "blue", Label: "blue"},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	if got := SplitChoices("   "); got != nil {
		t.Errorf("expected nil for blank choices, got %v", got)
	}
}
