package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyweave/goweave/internal/archive"
	"github.com/storyweave/goweave/internal/store"
	"github.com/storyweave/goweave/pkg/storystats"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import stories from a Twine HTML archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [story]",
	Short: "Export one story, or the whole library, as a Twine HTML archive",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var statsCmd = &cobra.Command{
	Use:   "stats <story>",
	Short: "Print word, link, and passage counts for a story",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write the archive to a file instead of stdout")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	stories, err := archive.Decode(f)
	if err != nil {
		return err
	}
	for _, st := range stories {
		if err := svc.Store().Apply(store.ImportStory{Story: st}); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d stories\n", len(stories))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	var stories []*store.Story
	if len(args) == 1 {
		st, err := storyByName(svc, args[0])
		if err != nil {
			return err
		}
		stories = []*store.Story{st}
	} else {
		stories, err = svc.Store().Stories()
		if err != nil {
			return err
		}
	}

	var encoded string
	for _, st := range stories {
		encoded += archive.Encode(st)
	}

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		return os.WriteFile(out, []byte(encoded), 0o644)
	}
	fmt.Fprint(cmd.OutOrStdout(), encoded)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	st, err := storyByName(svc, args[0])
	if err != nil {
		return err
	}

	passages := make([]storystats.Passage, 0, len(st.Passages))
	for _, p := range st.Passages {
		passages = append(passages, storystats.Passage{Name: p.Name, Text: p.Text})
	}
	stats := storystats.Compute(passages)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "passages:       %d\n", stats.Passages)
	fmt.Fprintf(w, "words:          %d\n", stats.Words)
	fmt.Fprintf(w, "characters:     %d\n", stats.Characters)
	fmt.Fprintf(w, "distinct words: %d\n", stats.DistinctWords)
	fmt.Fprintf(w, "links:          %d\n", stats.Links)
	fmt.Fprintf(w, "broken links:   %d\n", stats.BrokenLinks)
	return nil
}
