package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/davidbz/ideaforge/internal/config"
	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/store/sqlite"
)

func newHistoryCmd(loadConfig func() *config.Config) *cobra.Command {
	var (
		limit  int
		byType bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently scored ideas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer(loadConfig)
			if err != nil {
				return err
			}

			return container.Invoke(func(service *domain.AnalysisService, store *sqlite.IdeaStore) error {
				defer store.Close()
				out := cmd.OutOrStdout()

				if byType {
					counts, err := store.CountByType(cmd.Context())
					if err != nil {
						return err
					}
					types := make([]string, 0, len(counts))
					for t := range counts {
						types = append(types, string(t))
					}
					sort.Strings(types)
					for _, t := range types {
						fmt.Fprintf(out, "%-10s %d\n", t, counts[domain.IdeaType(t)])
					}
					return nil
				}

				records, err := service.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				for _, r := range records {
					cached := ""
					if r.Cached {
						cached = " (cached)"
					}
					fmt.Fprintf(out, "%s  %4.1f  %-8s %-10s %s%s\n",
						r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Score, r.Recommendation,
						r.IdeaType, r.Text, cached)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of ideas to show")
	cmd.Flags().BoolVar(&byType, "by-type", false, "show counts per idea type instead")

	return cmd
}
