package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return newRootCommandWithRunner(buildRunner)
}

func newRootCommandWithRunner(factory runnerFactory) *cobra.Command {
	var configFlag string
	var envFlag string
	var output string
	var showTranscript bool

	ctx := newCommandContext(&configFlag, &envFlag, factory)

	rootCmd := &cobra.Command{
		Use:   "dubsync <url> <language>",
		Short: "Dub an online video into another language",
		Long: "Downloads the video at <url>, transcribes its speech, translates the transcript\n" +
			"into <language>, synthesizes the translation, and muxes the new audio track\n" +
			"back onto the original video.",
		Example:       "  dubsync https://www.youtube.com/watch?v=dQw4w9WgXcQ Turkish",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureLogger()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, args[0], args[1], runOutputOptions{
				format:         output,
				showTranscript: showTranscript,
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env-file", "", "Dotenv file loaded before configuration (default .env)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "json", "Final state format: json or table")
	rootCmd.Flags().BoolVar(&showTranscript, "show-transcript", false, "Print the transcription to stderr after a successful run")

	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}
