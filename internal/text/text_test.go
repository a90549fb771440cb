package text

import (
	"testing"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "short line no wrap",
			input:    "hello world",
			width:    80,
			expected: "hello world",
		},
		{
			name:     "wrap at width",
			input:    "hello world test",
			width:    10,
			expected: "hello\nworld test",
		},
		{
			name:     "preserves newlines",
			input:    "line1\nline2",
			width:    80,
			expected: "line1\nline2",
		},
		{
			name:     "empty string",
			input:    "",
			width:    80,
			expected: "",
		},
		{
			name:     "width zero returns input",
			input:    "test",
			width:    0,
			expected: "test",
		},
		{
			name:     "long word exceeds width",
			input:    "superlongword short",
			width:    5,
			expected: "superlongword\nshort",
		},
		{
			name:     "long word last",
			input:    "short superlongword",
			width:    5,
			expected: "short\nsuperlongword",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WordWrap(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("WordWrap(%q, %d) = %q, want %q", tt.input, tt.width, result, tt.expected)
			}
		})
	}
}

func TestVisibleLength(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"plain text", "hello", 5},
		{"with ANSI color", "\x1b[31mred\x1b[0m", 3},
		{"empty", "", 0},
		{"only ANSI", "\x1b[31m\x1b[0m", 0},
		{"multibyte", "débat", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := VisibleLength(tt.input)
			if result != tt.expected {
				t.Errorf("VisibleLength(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"no truncation needed", "hello", 10, "hello"},
		{"truncation with ellipsis", "hello world", 8, "hello..."},
		{"min length enforced", "hello", 2, "h..."},
		{"counts runes", "ééééééé", 5, "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.n)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, result, tt.expected)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	if got := OneLine("  a\n b\t\tc  "); got != "a b c" {
		t.Errorf("OneLine = %q, want %q", got, "a b c")
	}
}

func TestIndent(t *testing.T) {
	if got := Indent("a\n\nb", "  "); got != "  a\n\n  b" {
		t.Errorf("Indent = %q", got)
	}
}
