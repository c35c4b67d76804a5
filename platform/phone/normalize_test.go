package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	n := NewNormalizer("BR")

	cases := []struct {
		in   string
		want string
	}{
		{"(47) 99988-7766", "+5547999887766"},
		{"+55 47 99988-7766", "+5547999887766"},
		{"  ", ""},
		{"not-a-number", "not-a-number"},
	}

	for _, tc := range cases {
		if got := n.NormalizeE164(tc.in); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDigitsStripsPlus(t *testing.T) {
	if got := Digits("+55 47 99988-7766"); got != "5547999887766" {
		t.Fatalf("Digits = %q", got)
	}
}
