package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ObiAU/newsfanout/internal/models"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var asJSON, withDigest bool

	cmd := &cobra.Command{
		Use:   "search <phrase>",
		Short: "Run one aggregation for a phrase and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			phrase := strings.Join(args, " ")
			articles, err := a.service.Search(cmd.Context(), phrase)
			if err != nil {
				return err
			}

			var digest string
			if withDigest {
				if a.digester == nil {
					return fmt.Errorf("--digest needs OPENAI_API_KEY")
				}
				digest, err = a.digester.Digest(cmd.Context(), phrase, articles)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, phrase, digest, articles)
			}
			writeText(out, phrase, digest, articles)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&withDigest, "digest", false, "add an LLM written digest of the result")
	return cmd
}

func writeJSON(w io.Writer, phrase, digest string, articles []models.Article) error {
	if articles == nil {
		articles = []models.Article{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Phrase   string           `json:"phrase"`
		Digest   string           `json:"digest,omitempty"`
		Count    int              `json:"count"`
		Articles []models.Article `json:"articles"`
	}{phrase, digest, len(articles), articles})
}

func writeText(w io.Writer, phrase, digest string, articles []models.Article) {
	if len(articles) == 0 {
		fmt.Fprintf(w, "No news found for %q.\n", phrase)
		return
	}

	fmt.Fprintf(w, "%d articles for %q\n\n", len(articles), phrase)
	for i, article := range articles {
		title := article.Title
		if title == "" {
			title = article.Description
		}
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, article.Source, title)
		if article.Timestamp > 0 {
			fmt.Fprintf(w, "    %s\n", article.PublishedAt().Format(time.RFC1123))
		}
		fmt.Fprintf(w, "    %s\n", article.URL)
	}

	if digest != "" {
		fmt.Fprintf(w, "\n%s\n", digest)
	}
}
