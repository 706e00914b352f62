package main

import "testing"

func TestLabelFailuresCount(t *testing.T) {
	cases := []struct {
		n    int
		rate float64
		want int
	}{
		{10, 0, 0},
		{10, 0.3, 3},
		{10, 1, 10},
		{3, 0.5, 2},
	}

	for _, tc := range cases {
		labels := labelFailures(tc.n, tc.rate)
		if len(labels) != tc.want {
			t.Fatalf("n=%d rate=%v: expected %d labels, got %d", tc.n, tc.rate, tc.want, len(labels))
		}
		for idx := range labels {
			if idx < 0 || idx >= tc.n {
				t.Fatalf("label index %d out of range", idx)
			}
		}
	}
}
