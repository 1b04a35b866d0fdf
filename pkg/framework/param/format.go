package param

import (
	"fmt"
	"strconv"
	"strings"
)

// suffix converts a value written with a unit into plain units.
type suffix struct {
	unit   string
	factor float64
}

// parseUnits accepts a bare number or a number followed by one of units,
// case-insensitively. Longer units that end in a shorter one must come
// first.
func parseUnits(s string, units ...suffix) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range units {
		if num, ok := strings.CutSuffix(s, u.unit); ok {
			v, err := parseNumber(num)
			return v * u.factor, err
		}
	}
	return parseNumber(s)
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", strings.TrimSpace(s))
	}
	return v, nil
}

func parseHertz(s string) (float64, error) {
	return parseUnits(s, suffix{"khz", 1000}, suffix{"hz", 1})
}

func parseMilliseconds(s string) (float64, error) {
	return parseUnits(s, suffix{"ms", 1}, suffix{"s", 1000})
}

func parsePercent(s string) (float64, error) {
	return parseUnits(s, suffix{"%", 0.01})
}

func parseDecibels(s string) (float64, error) {
	return parseUnits(s, suffix{"db", 1})
}

func parseMultiplier(s string) (float64, error) {
	return parseUnits(s, suffix{"x", 1})
}

func parseSwitch(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return 1, nil
	case "off", "false", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("expected on or off, got %q", s)
}

func hertz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

func lfoRate(hz float64) string {
	if hz < 1 {
		return fmt.Sprintf("%.3f Hz", hz)
	}
	return fmt.Sprintf("%.2f Hz", hz)
}

func milliseconds(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.1f ms", ms)
}

func percent(v float64) string { return fmt.Sprintf("%.0f%%", v*100) }

func signedDecibels(db float64) string { return fmt.Sprintf("%+.1f dB", db) }

func twoDecimals(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
