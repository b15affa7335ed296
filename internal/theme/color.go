package theme

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FormatHSL wraps an HSL triple in a CSS hsl() call. An empty triple yields
// "hsl()", which is how an unresolved color is rendered.
func FormatHSL(triple string) string {
	return "hsl(" + triple + ")"
}

// HexColor converts an HSL triple like "240 5.9% 10%" to "#rrggbb".
func HexColor(triple string) (string, error) {
	fields := strings.Fields(strings.ReplaceAll(triple, ",", " "))
	if len(fields) != 3 {
		return "", fmt.Errorf("invalid hsl triple %q", triple)
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "deg"), 64)
	if err != nil {
		return "", fmt.Errorf("invalid hue in %q: %w", triple, err)
	}
	s, err := parsePercent(fields[1])
	if err != nil {
		return "", fmt.Errorf("invalid saturation in %q: %w", triple, err)
	}
	l, err := parsePercent(fields[2])
	if err != nil {
		return "", fmt.Errorf("invalid lightness in %q: %w", triple, err)
	}
	return colorful.Hsl(h, s, l).Clamped().Hex(), nil
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}
