package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbz/ideaforge/internal/config"
	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/store/sqlite"
)

func newScoreCmd(loadConfig func() *config.Config) *cobra.Command {
	var (
		analyzerName string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "score <idea> [idea...]",
		Short: "Score one or more ideas; later ideas may be served from cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(loadConfig)
			if err != nil {
				return err
			}

			return container.Invoke(func(service *domain.AnalysisService, store *sqlite.IdeaStore) error {
				defer store.Close()

				out := cmd.OutOrStdout()
				for _, idea := range args {
					analysis, err := service.Analyze(cmd.Context(), idea, analyzerName)
					if err != nil {
						return fmt.Errorf("score %q: %w", idea, err)
					}
					if asJSON {
						if err := json.NewEncoder(out).Encode(analysis); err != nil {
							return err
						}
						continue
					}
					printAnalysis(out, analysis)
				}

				if !asJSON {
					return printEffectiveness(cmd, out, service.Cache())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&analyzerName, "analyzer", "a", "", "analyzer to use (default: configured default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON lines")

	return cmd
}

func printEffectiveness(cmd *cobra.Command, w io.Writer, cache *domain.AnalysisCache) error {
	if cache == nil {
		return nil
	}
	m, err := cache.EffectivenessMetrics(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "cache: exact %.0f%%  semantic %.0f%%  overall %.0f%%  avg similarity %.2f\n",
		m.ExactHitRate*100, m.SemanticHitRate*100, m.OverallHitRate*100, m.AverageSimilarity)
	return nil
}

func printAnalysis(w io.Writer, a *domain.Analysis) {
	source := "fresh"
	if a.Cached {
		source = fmt.Sprintf("cached, similarity %.2f", a.Similarity)
	}

	fmt.Fprintf(w, "%s\n", a.Idea)
	fmt.Fprintf(w, "  score %.1f/10  %s  (%s, %s confidence, %s)\n",
		a.Result.FinalScore, strings.ToUpper(string(a.Result.Recommendation)),
		a.IdeaType, a.Confidence, source)

	dims := make([]string, 0, len(a.Result.Dimensions))
	for name := range a.Result.Dimensions {
		dims = append(dims, name)
	}
	sort.Strings(dims)
	for _, name := range dims {
		fmt.Fprintf(w, "  %-12s %4.1f\n", name, a.Result.Dimensions[name])
	}
	for _, e := range a.Result.Explanations {
		fmt.Fprintf(w, "  - %s\n", e)
	}
}
