// Package theme holds the theme catalog and the appearance mode consumed by
// the preference store.
package theme

// Vars maps CSS variable names (without the leading "--") to HSL triples.
type Vars map[string]string

// CSSVars carries one variable set per appearance mode.
type CSSVars struct {
	Light Vars `json:"light" yaml:"light"`
	Dark  Vars `json:"dark" yaml:"dark"`
}

// ForMode returns the variable set for m. Anything other than dark is light.
func (c CSSVars) ForMode(m Mode) Vars {
	if m == ModeDark {
		return c.Dark
	}
	return c.Light
}

// Theme is a named catalog entry.
type Theme struct {
	Name    string  `json:"name" yaml:"name"`
	CSSVars CSSVars `json:"cssVars" yaml:"cssVars"`
}

// Catalog is an ordered list of themes looked up by exact name.
type Catalog []Theme

// Lookup returns the first theme whose name equals name.
func (c Catalog) Lookup(name string) (Theme, bool) {
	for _, t := range c {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Names returns the theme names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name
	}
	return names
}

func entry(name, lightPrimary, lightFg, darkPrimary, darkFg string) Theme {
	return Theme{
		Name: name,
		CSSVars: CSSVars{
			Light: Vars{"primary": lightPrimary, "primary-foreground": lightFg, "ring": lightPrimary},
			Dark:  Vars{"primary": darkPrimary, "primary-foreground": darkFg, "ring": darkPrimary},
		},
	}
}

// Builtin returns the catalog shipped with the binary.
func Builtin() Catalog {
	return Catalog{
		entry("zinc", "240 5.9% 10%", "0 0% 98%", "0 0% 98%", "240 5.9% 10%"),
		entry("slate", "222.2 47.4% 11.2%", "210 40% 98%", "210 40% 98%", "222.2 47.4% 11.2%"),
		entry("stone", "24 9.8% 10%", "60 9.1% 97.8%", "60 9.1% 97.8%", "24 9.8% 10%"),
		entry("gray", "220.9 39.3% 11%", "210 20% 98%", "210 20% 98%", "220.9 39.3% 11%"),
		entry("neutral", "0 0% 9%", "0 0% 98%", "0 0% 98%", "0 0% 9%"),
		entry("red", "0 72.2% 50.6%", "0 85.7% 97.3%", "0 72.2% 50.6%", "0 85.7% 97.3%"),
		entry("rose", "346.8 77.2% 49.8%", "355.7 100% 97.3%", "346.8 77.2% 49.8%", "355.7 100% 97.3%"),
		entry("orange", "24.6 95% 53.1%", "60 9.1% 97.8%", "20.5 90.2% 48.2%", "60 9.1% 97.8%"),
		entry("green", "142.1 76.2% 36.3%", "355.7 100% 97.3%", "142.1 70.6% 45.3%", "144.9 80.4% 10%"),
		entry("blue", "221.2 83.2% 53.3%", "210 40% 98%", "217.2 91.2% 59.8%", "222.2 47.4% 11.2%"),
		entry("yellow", "47.9 95.8% 53.1%", "26 83.3% 14.1%", "47.9 95.8% 53.1%", "26 83.3% 14.1%"),
		entry("violet", "262.1 83.3% 57.8%", "210 20% 98%", "263.4 70% 50.4%", "210 20% 98%"),
	}
}
