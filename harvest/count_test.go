package harvest

import (
	"testing"
)

func TestParseCount_Suffixes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1.2K", 1200},
		{".5K", 500},
		{"2M", 2000000},
		{"1B", 1000000000},
		{"3,400", 3400},
		{"512", 512},
		{"0", 0},
	}

	for _, c := range cases {
		if got := ParseCount(c.in); got != c.want {
			t.Errorf("ParseCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseCount_NoisyLabels(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1.2K replies", 1200},
		{"34 reposts, see more", 34},
		{"5,303 views", 5303},
	}

	for _, c := range cases {
		if got := ParseCount(c.in); got != c.want {
			t.Errorf("ParseCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseCount_Unparseable(t *testing.T) {
	for _, in := range []string{"", "no numbers here", "K", "likes"} {
		if got := ParseCount(in); got != 0 {
			t.Errorf("ParseCount(%q) = %d, want 0", in, got)
		}
	}
}

func TestParseCount_FractionTruncates(t *testing.T) {
	// 1.2345K scales to 1234.5; the fractional part drops.
	if got := ParseCount("1.2345K"); got != 1234 {
		t.Errorf("ParseCount(1.2345K) = %d, want 1234", got)
	}
}
