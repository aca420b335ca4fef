package phone

import "testing"

func TestPlausible(t *testing.T) {
	cases := []struct {
		input  string
		region string
		want   bool
	}{
		{"9876543210", "IN", true},
		{"+91 98765 43210", "", true},
		{"+31 6 12345678", "IN", true},
		{"12", "IN", false},
		{"not a number", "IN", false},
		{"   ", "IN", false},
	}

	for _, tc := range cases {
		if got := Plausible(tc.input, tc.region); got != tc.want {
			t.Errorf("Plausible(%q, %q) = %v, want %v", tc.input, tc.region, got, tc.want)
		}
	}
}
