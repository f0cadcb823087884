package util

import (
	"strings"
	"testing"
)

func TestAddUniquePrefixToFileName(t *testing.T) {
	got := AddUniquePrefixToFileName("ex.txt")
	if !strings.HasSuffix(got, "_ex.txt") {
		t.Errorf("expected suffix _ex.txt, got %q", got)
	}
	if len(got) <= len("_ex.txt") {
		t.Errorf("expected a non-empty prefix, got %q", got)
	}
}

func TestSplitFileName(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		ext      string
	}{
		{"photo1.jpg", "photo1", ".jpg"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"noext", "noext", ""},
		{".hidden", ".hidden", ""},
	}

	for _, tt := range tests {
		name, ext := SplitFileName(tt.input)
		if name != tt.name || ext != tt.ext {
			t.Errorf("SplitFileName(%q) = (%q, %q), expected (%q, %q)", tt.input, name, ext, tt.name, tt.ext)
		}
	}
}

func TestIsImageContentType(t *testing.T) {
	if !IsImageContentType("image/jpeg") {
		t.Error("expected image/jpeg to be an image")
	}
	if IsImageContentType("application/pdf") {
		t.Error("expected application/pdf to not be an image")
	}
}
