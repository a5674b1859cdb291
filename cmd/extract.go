package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arjun/factdeck/internal/facts"
	"github.com/arjun/factdeck/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract facts from an ad-hoc text file without running the full pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		topic, _ := cmd.Flags().GetString("topic")
		save, _ := cmd.Flags().GetBool("save")

		if topic == "" {
			topic = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		unsubscribe := a.service.SubscribeProgress(renderEvent)
		defer unsubscribe()

		ctx := cmd.Context()
		extracted, err := a.service.ExtractFacts(ctx, string(data), topic)
		if err != nil {
			return err
		}

		for i, f := range extracted {
			fmt.Printf("%3d. %s\n", i+1, f.Content)
		}

		if !save {
			return nil
		}

		repo := a.st.Facts()
		for _, f := range extracted {
			f.Source = facts.SourceUserUpload
			rec, err := store.NewFactRecord(f)
			if err != nil {
				return err
			}
			if _, err := repo.Insert(ctx, rec); err != nil {
				return fmt.Errorf("save fact: %w", err)
			}
		}
		fmt.Printf("Saved %d fact(s) under topic %q.\n", len(extracted), topic)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("topic", "", "Topic to tag facts with (default: file name)")
	extractCmd.Flags().Bool("save", false, "Persist extracted facts with userUpload provenance")
}
