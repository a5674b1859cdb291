package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arjun/factdeck/internal/progress"
	"github.com/arjun/factdeck/internal/provision"
)

var processCmd = &cobra.Command{
	Use:   "process <topic>",
	Short: "Run the full pipeline for a topic: extract, save, quiz, save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		unsubscribe := a.service.SubscribeProgress(renderEvent)
		defer unsubscribe()

		ctx := cmd.Context()
		if err := a.service.Initialize(ctx); err != nil {
			if !errors.Is(err, provision.ErrModelInitialization) {
				return err
			}
			fmt.Println("No usable model; continuing with sentence-segmentation fallback.")
		}

		if err := a.service.ProcessTopicFile(ctx, topic); err != nil {
			return err
		}

		fmt.Printf("Topic %q processed.\n", topic)
		return nil
	},
}

// renderEvent prints one progress line per pipeline event.
func renderEvent(ev progress.Event) {
	switch e := ev.(type) {
	case progress.ModelDownload:
		fmt.Printf("\rdownloading model… %3.0f%%", e.Progress*100)
		if e.Progress >= 1 {
			fmt.Println()
		}
	case progress.ParseStart:
		fmt.Printf("extracting %q in %d chunk(s)\n", e.Topic, e.TotalChunks)
	case progress.ParseChunkStart:
		fmt.Printf("  chunk %d/%d…\n", e.ChunkIndex+1, e.TotalChunks)
	case progress.ParseChunkComplete:
		fmt.Printf("  chunk %d/%d done, %d fact(s)\n", e.ChunkIndex+1, e.TotalChunks, e.FactsGenerated)
	case progress.ParseComplete:
		fmt.Printf("extraction complete: %d fact(s)\n", e.FactsGenerated)
	case progress.ParseError:
		fmt.Printf("extraction failed: %s\n", e.Message)
	case progress.StorageSaveProgress:
		fmt.Printf("\rsaving… %d/%d", e.Saved, e.Total)
		if e.Saved >= e.Total {
			fmt.Println()
		}
	case progress.StorageComplete:
		fmt.Printf("saved %d fact(s)\n", e.Total)
	case progress.QuizStart:
		fmt.Printf("generating %d quiz(zes)\n", e.Total)
	case progress.QuizProgress:
		fmt.Printf("  quiz %d/%d\n", e.Current, e.Total)
	case progress.QuizComplete:
		fmt.Printf("quiz generation complete: %d item(s)\n", e.Total)
	}
}
