package prefs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kalambet/themeprefs/internal/theme"
)

const (
	// ClassPrefix starts every display class.
	ClassPrefix = "theme-"
	// NoTheme stands in for the theme name when none is set.
	NoTheme = "none"
)

// DisplayClass returns the CSS class for rec.
func DisplayClass(rec Record) string {
	name := rec.Theme
	if name == "" {
		name = NoTheme
	}
	return ClassPrefix + name
}

// PrimaryColor resolves rec's theme in c and formats its primary color for
// mode m. A theme missing from the catalog renders as "hsl()".
func PrimaryColor(rec Record, c theme.Catalog, m theme.Mode) string {
	t, ok := c.Lookup(rec.Theme)
	if !ok {
		return theme.FormatHSL("")
	}
	return theme.FormatHSL(t.CSSVars.ForMode(m)["primary"])
}

// CSS renders a rule for rec's display class with the theme variables for m
// and the radius in rem. Unknown themes get only the radius.
func CSS(rec Record, c theme.Catalog, m theme.Mode) string {
	var b strings.Builder
	b.WriteString(".")
	b.WriteString(DisplayClass(rec))
	b.WriteString(" {\n")

	if t, ok := c.Lookup(rec.Theme); ok {
		vars := t.CSSVars.ForMode(m)
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString("  --")
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(vars[name])
			b.WriteString(";\n")
		}
	}

	b.WriteString("  --radius: ")
	b.WriteString(strconv.FormatFloat(rec.Radius, 'f', -1, 64))
	b.WriteString("rem;\n}\n")
	return b.String()
}
