package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/health"
	"github.com/fieldscope/vztrack/pkg/types"
)

var healthCmd = &cobra.Command{
	Use:   "health <ccr-nfid>",
	Short: "Score a master project's health",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		mp, err := master.GetProjectByNaturalKey(args[0])
		if err != nil {
			return err
		}

		latest, err := master.LatestKPISnapshot(mp.Project.LocalID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return err
		}

		score := health.Calculate(&mp.Project, latest)
		return output(score, func() {
			fmt.Printf("%s %s: %s (%.1f, grade %s)\n",
				mp.CCRNFID, mp.Name, score.Label, score.Total, score.Grade)
			fmt.Printf("  schedule      %.0f\n", score.Breakdown.Schedule)
			fmt.Printf("  kpi freshness %.0f\n", score.Breakdown.KPIFreshness)
			fmt.Printf("  status        %.0f\n", score.Breakdown.Status)
			fmt.Printf("  budget        %.0f\n", score.Breakdown.Budget)
			fmt.Printf("  dependencies  %.0f\n", score.Breakdown.Dependencies)
		})
	},
}
