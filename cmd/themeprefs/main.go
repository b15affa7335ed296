package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var version = "dev"

// noColor disables ANSI output. It defaults to on when stderr is not a
// terminal or NO_COLOR is set.
var noColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stderr)

// remote routes show/set through a running `themeprefs serve`.
var remote bool

var rootCmd = &cobra.Command{
	Use:           "themeprefs",
	Short:         "Manage the UI theme and corner radius preferences",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", noColor, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&remote, "remote", false, "talk to a running server instead of the store")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(cssCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
