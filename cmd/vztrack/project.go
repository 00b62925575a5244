package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/pkg/types"
)

var (
	flagProjName         string
	flagProjCCRNFID      string
	flagProjStatus       string
	flagProjPhase        string
	flagProjNotes        string
	flagProjCustomer     string
	flagProjCLLI         string
	flagProjSiteAddress  string
	flagProjQueue        string
	flagProjSystemType   string
	flagProjStartDate    string
	flagProjCompleteDate string
	flagProjPMID         int64
	flagProjDirtyOnly    bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects in your local store",
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a project in your local store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		p := &types.Project{
			Name:                flagProjName,
			CCRNFID:             flagProjCCRNFID,
			PMID:                flagProjPMID,
			Status:              flagProjStatus,
			Phase:               flagProjPhase,
			Notes:               flagProjNotes,
			Customer:            flagProjCustomer,
			CLLI:                flagProjCLLI,
			SiteAddress:         flagProjSiteAddress,
			CurrentQueue:        flagProjQueue,
			SystemType:          flagProjSystemType,
			ProjectStartDate:    flagProjStartDate,
			ProjectCompleteDate: flagProjCompleteDate,
		}
		id, err := local.CreateProject(p)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %s (local id %d)\n", p.CCRNFID, id)
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <local-id>",
	Short: "Edit a project in your local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		localID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid local id %q", args[0])
		}

		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		flags := cmd.Flags()
		update := types.ProjectUpdate{
			Name:                strPtr(flags.Changed("name"), flagProjName),
			Status:              strPtr(flags.Changed("status"), flagProjStatus),
			Phase:               strPtr(flags.Changed("phase"), flagProjPhase),
			Notes:               strPtr(flags.Changed("notes"), flagProjNotes),
			Customer:            strPtr(flags.Changed("customer"), flagProjCustomer),
			CLLI:                strPtr(flags.Changed("clli"), flagProjCLLI),
			SiteAddress:         strPtr(flags.Changed("site-address"), flagProjSiteAddress),
			CurrentQueue:        strPtr(flags.Changed("queue"), flagProjQueue),
			SystemType:          strPtr(flags.Changed("system-type"), flagProjSystemType),
			ProjectStartDate:    strPtr(flags.Changed("start-date"), flagProjStartDate),
			ProjectCompleteDate: strPtr(flags.Changed("complete-date"), flagProjCompleteDate),
		}
		if err := local.UpdateProject(localID, update); err != nil {
			return err
		}
		fmt.Printf("Updated project %d\n", localID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects in your local store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		projects, err := local.ListProjects()
		if err != nil {
			return err
		}
		if flagProjDirtyOnly {
			var dirty []types.Project
			for _, p := range projects {
				if p.SyncStatus != types.SyncSynced {
					dirty = append(dirty, p)
				}
			}
			projects = dirty
		}
		return output(projects, func() {
			for _, p := range projects {
				fmt.Printf("%-4d %-12s %-32s %-10s %s\n",
					p.LocalID, p.CCRNFID, p.Name, p.Status, p.SyncStatus)
			}
		})
	},
}

var projectSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search your local store by name, CCR/NFID, customer, or address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		projects, err := local.SearchProjects(args[0], flagSearchLimit)
		if err != nil {
			return err
		}
		return output(projects, func() {
			if len(projects) == 0 {
				fmt.Println("No matching projects.")
				return
			}
			for _, p := range projects {
				fmt.Printf("%-4d %-12s %-32s %-10s %s\n",
					p.LocalID, p.CCRNFID, p.Name, p.Status, p.Customer)
			}
		})
	},
}

func addProjectFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProjName, "name", "", "project name")
	cmd.Flags().StringVar(&flagProjStatus, "status", "", "status: Active, On Hold, Completed, Cancelled")
	cmd.Flags().StringVar(&flagProjPhase, "phase", "", "current phase")
	cmd.Flags().StringVar(&flagProjNotes, "notes", "", "free-text notes")
	cmd.Flags().StringVar(&flagProjCustomer, "customer", "", "customer name")
	cmd.Flags().StringVar(&flagProjCLLI, "clli", "", "CLLI site code")
	cmd.Flags().StringVar(&flagProjSiteAddress, "site-address", "", "site address")
	cmd.Flags().StringVar(&flagProjQueue, "queue", "", "current work queue")
	cmd.Flags().StringVar(&flagProjSystemType, "system-type", "", "system type")
	cmd.Flags().StringVar(&flagProjStartDate, "start-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagProjCompleteDate, "complete-date", "", "completion date (YYYY-MM-DD)")
}

func init() {
	addProjectFieldFlags(projectAddCmd)
	projectAddCmd.Flags().StringVar(&flagProjCCRNFID, "ccr-nfid", "", "CCR/NFID natural key (required)")
	projectAddCmd.Flags().Int64Var(&flagProjPMID, "pm-id", 0, "owning project manager's user id")
	_ = projectAddCmd.MarkFlagRequired("ccr-nfid")
	_ = projectAddCmd.MarkFlagRequired("name")

	addProjectFieldFlags(projectUpdateCmd)

	projectListCmd.Flags().BoolVar(&flagProjDirtyOnly, "dirty", false, "only show rows pending sync")

	projectSearchCmd.Flags().IntVar(&flagSearchLimit, "limit", 10, "maximum results")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectSearchCmd)
}
