package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var factsCmd = &cobra.Command{
	Use:   "facts <topic>",
	Short: "List persisted facts and quizzes for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.st.Facts().ByTopic(cmd.Context(), topic, limit, offset)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Printf("No facts for topic %q.\n", topic)
			return nil
		}

		for _, rec := range recs {
			f, err := rec.Fact()
			if err != nil {
				return err
			}
			if f.IsQuiz && f.Quiz != nil {
				fmt.Printf("%5d  [quiz] %s\n", f.ID, f.Quiz.Question)
				for i, opt := range f.Quiz.Options {
					marker := " "
					if i == f.Quiz.CorrectIndex {
						marker = "*"
					}
					fmt.Printf("       %s %c) %s\n", marker, 'a'+rune(i), opt)
				}
				continue
			}
			fmt.Printf("%5d  [%s] %s\n", f.ID, f.Source, f.Content)
		}
		return nil
	},
}

func init() {
	factsCmd.Flags().Int("limit", 0, "Maximum records to list (0 = all)")
	factsCmd.Flags().Int("offset", 0, "Records to skip")
}
