package course

import "testing"

func TestValidSearchQuery(t *testing.T) {
	tests := []struct {
		q     string
		valid bool
	}{
		{"ab", true},
		{"smith", true},
		{"éa", true},
		{"日本", true},
		{"a", false},
		{"é", false}, // one rune, two bytes
		{"日", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := validSearchQuery(tt.q); got != tt.valid {
			t.Errorf("validSearchQuery(%q) = %v, want %v", tt.q, got, tt.valid)
		}
	}
}
