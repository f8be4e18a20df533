package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dubsync/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "languages",
		Short:       "List target languages and the voice locale each one uses",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := language.Entries()
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Name, e.Code2, e.Code3, e.Locale})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Language", "ISO 639-1", "ISO 639-2", "Locale"}, rows, nil))
			fmt.Fprintf(out, "Unlisted languages fall back to tts.default_locale (%s unless configured).\n", language.DefaultLocale)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the table as JSON")
	return cmd
}
