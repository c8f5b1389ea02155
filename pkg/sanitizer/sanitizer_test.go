package sanitizer

import "testing"

func TestSanitizeNotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim", "  late arrival  ", "late arrival"},
		{"keeps lines", "line one\nline two", "line one\nline two"},
		{"crlf", "a\r\nb", "a\nb"},
		{"drops blank lines", "a\n\n   \nb", "a\nb"},
		{"collapses inner spaces", "two    guests\tand a dog", "two guests and a dog"},
		{"control chars", "bell\x07 here", "bell here"},
		{"empty", "   \n\t ", ""},
		{"unicode", " Casa del Río ", "Casa del Río"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNotes(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeNotes(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeNotes(got); again != got {
				t.Errorf("SanitizeNotes not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  guest\ncancelled  ", "guest cancelled"},
		{"a\x00b", "ab"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" 65f1c0ffee ", "65f1c0ffee"},
		{"TX 123\t456", "TX123456"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeIdentifier(tt.input); got != tt.want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeCode(t *testing.T) {
	if got := SanitizeCode(" Transfer "); got != "transfer" {
		t.Errorf("SanitizeCode() = %q, want transfer", got)
	}
}
