package fieldset

import "testing"

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected rune
	}{
		{
			name:     "Comma",
			content:  "ID,Name,Value\n1,Test,100\n2,Test2,200",
			expected: ',',
		},
		{
			name:     "Semicolon",
			content:  "ID;Name;Value\n1;Test;100\n2;Test2;200",
			expected: ';',
		},
		{
			name:     "Tab",
			content:  "ID\tName\tValue\n1\tTest\t100\n2\tTest2\t200",
			expected: '\t',
		},
		{
			name:     "Pipe",
			content:  "ID|Name|Value\n1|Test|100\n2|Test2|200",
			expected: '|',
		},
		{
			name:     "Empty input defaults to comma",
			content:  "",
			expected: ',',
		},
		{
			name:     "No delimiter defaults to comma",
			content:  "justoneword\nanother",
			expected: ',',
		},
		{
			name:     "Semicolon with commas inside values",
			content:  "ID;Name;Note\n1;Test;a, b\n2;Test2;c, d\n3;Test3;e, f",
			expected: ';',
		},
		{
			name:     "Single line",
			content:  "ID,Name,Value",
			expected: ',',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDelimiter(tt.content, DefaultDelimiterSampleSize)
			if got != tt.expected {
				t.Errorf("DetectDelimiter() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
