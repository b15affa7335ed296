package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/themeprefs/internal/backend"
	"github.com/kalambet/themeprefs/internal/config"
	"github.com/kalambet/themeprefs/internal/localstore"
	"github.com/kalambet/themeprefs/internal/prefs"
	"github.com/kalambet/themeprefs/internal/theme"
)

const flushTimeout = 5 * time.Second

// withSource opens the preference source, runs fn and closes it.
func withSource(cmd *cobra.Command, fn func(ctx context.Context, src source) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, src)
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current theme preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSource(cmd, func(ctx context.Context, src source) error {
			v, err := src.View(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), v)
			}
			writeView(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "print as JSON")
}

func writeView(w io.Writer, v prefs.View) {
	name := v.Theme
	if name == "" {
		name = "(none)"
	}
	hex, _ := theme.HexColor(hslTriple(v.PrimaryColor))
	fmt.Fprintf(w, "  %s %s\n", colorize(colorBold, "Theme:"), name)
	fmt.Fprintf(w, "  %s %srem\n", colorize(colorBold, "Radius:"), strconv.FormatFloat(v.Radius, 'f', -1, 64))
	fmt.Fprintf(w, "  %s %s\n", colorize(colorBold, "Class:"), v.DisplayClass)
	fmt.Fprintf(w, "  %s %s %s\n", colorize(colorBold, "Primary:"), swatch(hex), v.PrimaryColor)
	fmt.Fprintf(w, "  %s %s\n", colorize(colorBold, "Mode:"), v.Mode)
	if v.Backend != "" {
		fmt.Fprintf(w, "  %s %s\n", colorize(colorBold, "Backend:"), v.Backend)
	}
}

// hslTriple strips the hsl() wrapper added by theme.FormatHSL.
func hslTriple(color string) string {
	inner, ok := strings.CutPrefix(color, "hsl(")
	if !ok {
		return ""
	}
	return strings.TrimSuffix(inner, ")")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- set ---

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a preference",
}

var setThemeCmd = &cobra.Command{
	Use:   "theme <name>",
	Short: "Switch the active theme",
	Long: `Switch the active theme.

Any name is accepted. Names missing from the catalog keep their display
class but resolve no primary color.

Examples:
  themeprefs set theme rose
  themeprefs --remote set theme slate`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" {
			return fmt.Errorf("theme name is required")
		}
		return withSource(cmd, func(ctx context.Context, src source) error {
			v, err := src.SetTheme(ctx, name)
			if err != nil {
				return err
			}
			if v.PrimaryColor == theme.FormatHSL("") {
				printWarning("theme %q is not in the catalog; no primary color", name)
			}
			printSuccess("Theme set to %s (%s)", name, v.DisplayClass)
			return nil
		})
	},
}

var setRadiusCmd = &cobra.Command{
	Use:   "radius <rem>",
	Short: "Set the corner radius in rem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		radius, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid radius %q: %w", args[0], err)
		}
		if radius < 0 {
			return fmt.Errorf("radius must not be negative, got %v", radius)
		}
		return withSource(cmd, func(ctx context.Context, src source) error {
			v, err := src.SetRadius(ctx, radius)
			if err != nil {
				return err
			}
			printSuccess("Radius set to %srem", strconv.FormatFloat(v.Radius, 'f', -1, 64))
			return nil
		})
	},
}

func init() {
	setCmd.AddCommand(setThemeCmd)
	setCmd.AddCommand(setRadiusCmd)
}

// --- themes ---

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List catalog themes with their primary colors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSource(cmd, func(ctx context.Context, src source) error {
			themes, err := src.Themes(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, t := range themes {
				marker := " "
				if t.Current {
					marker = colorize(colorGreen, "*")
				}
				fmt.Fprintf(w, "%s %s %-10s %s\n", marker, swatch(t.Hex), t.Name, t.PrimaryColor)
			}
			return nil
		})
	},
}

// --- css ---

var cssCmd = &cobra.Command{
	Use:   "css",
	Short: "Print the CSS rule for the current theme and radius",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSource(cmd, func(ctx context.Context, src source) error {
			css, err := src.CSS(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), css)
			return nil
		})
	},
}

// --- backend ---

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show which persistence backend is in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remote {
			return withSource(cmd, func(ctx context.Context, src source) error {
				v, err := src.View(ctx)
				if err != nil {
					return err
				}
				printStatus("Effective", "%s", v.Backend)
				return nil
			})
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		st, err := openStore(ctx, cfg, newLogger(cfg.Log.Level))
		if err != nil {
			return err
		}
		defer st.Close()

		effective, _ := st.Backend()
		printStatus("Detected", "%s (marker %s)", st.Detected(), backend.DesktopShellMarker)
		printStatus("Effective", "%s", effective)
		switch effective {
		case backend.KindDesktopShell:
			printStatus("Store", "%s", filepath.Join(cfg.Storage.DataDir, cfg.Storage.StoreName+".db"))
		default:
			printStatus("Store", "%s", filepath.Join(cfg.Storage.DataDir, localstore.DefaultFileName))
		}
		printStatus("Key", "%s", prefs.StorageKey)
		printStatus("Session", "%s", st.Session())
		if effective != st.Detected() {
			printWarning("desktop shell store unavailable; using local storage for this session")
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		if cfg.Server.Token != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, "server.token"), "(set)")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
