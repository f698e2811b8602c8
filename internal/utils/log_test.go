package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "non-positive limit yields empty string",
			input:  "привет",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit passes through",
			input:  "короткий вопрос",
			limit:  50,
			expect: "короткий вопрос",
		},
		{
			name:   "truncates by runes and appends ellipsis",
			input:  "расскажите о вашем опыте",
			limit:  10,
			expect: "расскажите...",
		},
		{
			name:   "trims surrounding whitespace first",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
