package matcher

import "testing"

func TestNormalizeQuestion(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "trims whitespace", in: "  How Do I Repay  ", out: "how do i repay"},
		{name: "collapses punctuation", in: "What's, the interest rate?", out: "what s the interest rate"},
		{name: "empty input", in: "   ", out: ""},
	}

	for _, tc := range cases {
		if got := normalizeQuestion(tc.in); got != tc.out {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.out, got)
		}
	}
}
