package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/pkg/types"
)

var (
	flagKPIDate     string
	flagKPIBudget   string
	flagKPISchedule string
	flagKPIOnTime   float64
	flagKPINotes    string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Capture KPI snapshots in your local store",
}

var kpiAddCmd = &cobra.Command{
	Use:   "add <local-project-id>",
	Short: "Record a KPI snapshot for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid local project id %q", args[0])
		}

		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		id, err := local.AddKPISnapshot(&types.KPISnapshot{
			LocalProjectID: projectID,
			SnapshotDate:   flagKPIDate,
			BudgetStatus:   flagKPIBudget,
			ScheduleStatus: flagKPISchedule,
			OnTimePercent:  flagKPIOnTime,
			Notes:          flagKPINotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Recorded KPI snapshot %d for project %d on %s\n", id, projectID, flagKPIDate)
		return nil
	},
}

func init() {
	kpiAddCmd.Flags().StringVar(&flagKPIDate, "date", "", "snapshot date (YYYY-MM-DD, required)")
	kpiAddCmd.Flags().StringVar(&flagKPIBudget, "budget", "", "budget status, e.g. Green/Yellow/Red")
	kpiAddCmd.Flags().StringVar(&flagKPISchedule, "schedule", "", "schedule status, e.g. Green/Yellow/Red")
	kpiAddCmd.Flags().Float64Var(&flagKPIOnTime, "on-time", 0, "on-time percentage")
	kpiAddCmd.Flags().StringVar(&flagKPINotes, "notes", "", "free-text notes")
	_ = kpiAddCmd.MarkFlagRequired("date")

	kpiCmd.AddCommand(kpiAddCmd)
}
