package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ObiAU/newsfanout/internal/models"
)

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources with their priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			policy := a.service.Policy()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tID\tNAME\tKIND")
			for _, src := range a.service.Sources() {
				rank := "-"
				if r := policy.Rank(src.ID); r > 0 {
					rank = fmt.Sprint(r)
				}
				kind := src.Kind
				if kind == "" {
					kind = models.KindNewsAPI
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rank, src.ID, src.Name, kind)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nmax articles: %d\n", policy.Cap)
			return nil
		},
	}
}
