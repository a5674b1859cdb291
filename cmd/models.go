package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arjun/factdeck/internal/provision"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show model candidates and their cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("%-36s  %-8s  %-8s  %s\n", "Model", "Context", "Primary", "Cached")
		for _, cand := range provision.DefaultCandidates() {
			cached := "no"
			if a.cache.Exists(cand.ModelID) {
				cached = "yes"
			}
			fmt.Printf("%-36s  %-8d  %-8t  %s\n",
				cand.ModelID, cand.ContextSize, cand.Primary, cached)
		}
		fmt.Printf("\nmodels dir: %s\n", a.cfg.ModelsDir)
		return nil
	},
}
