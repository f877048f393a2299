package money

import "testing"

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{2.675, 2.68},
		{-2.675, -2.68},
		{114.99999999999999, 115},
		{1.004, 1},
		{3.0199999999999996, 3.02},
		{10, 10},
		{0.1, 0.1},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Fatalf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
