package harvest

import (
	"regexp"
	"strconv"
	"strings"
)

// countPattern grabs the first numeric token (thousands separators, a
// decimal point, or a bare leading point as in ".5K") with an optional
// magnitude suffix.
var countPattern = regexp.MustCompile(`(\.[0-9]+|[0-9][0-9,.]*)\s*([KMB])?`)

// ParseCount parses abbreviated human-readable counts ("1.2K", "3,400")
// from noisy label text into integers. K/M/B suffixes scale by 10³/10⁶/10⁹;
// fractional results truncate toward zero. Anything unparseable yields 0 —
// this is a best-effort parser and never errors.
func ParseCount(text string) int {
	m := countPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}

	switch m[2] {
	case "K":
		num *= 1_000
	case "M":
		num *= 1_000_000
	case "B":
		num *= 1_000_000_000
	}

	return int(num)
}
