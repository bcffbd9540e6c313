package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/taxdesk/internal/transport"
	"github.com/kalambet/taxdesk/internal/view"
)

var version = "dev"

// Exit codes.
const (
	exitError        = 1
	exitUnauthorized = 2
)

var (
	noColor      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "taxdesk",
	Short:         "Tax documents, document Q&A and tax news from the terminal",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "text", "json", "yaml":
			return nil
		default:
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(devBackendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%s", errorText(err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, transport.ErrSessionExpired) || errors.Is(err, view.ErrNotLoggedIn) {
		return exitUnauthorized
	}
	return exitError
}

// errorText is what the user sees for err: the page message of a view
// failure, or the error itself.
func errorText(err error) string {
	var f *view.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
