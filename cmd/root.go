package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "factdeck",
	Short: "Turn topic text into swipeable facts and quizzes",
	Long: "FactDeck extracts short, deduplicated facts from topic text using a local\n" +
		"completion model (with sentence-segmentation fallback) and generates\n" +
		"validated multiple-choice quizzes from them.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to factdeck.yaml (default: ./factdeck.yaml, then XDG config dir)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides config)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable development logging")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(versionCmd)
}
