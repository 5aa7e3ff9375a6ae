package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

var wavesCmd = &cobra.Command{
	Use:   "waves",
	Short: "List and inspect waves",
	Long:  `Commands for listing waves and printing a single wave's workflow status.`,
}

var wavesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List waves",
	RunE:  runWavesList,
}

var wavesStatusCmd = &cobra.Command{
	Use:   "status <wave-id>",
	Short: "Print a wave's workflow status",
	Long: `Print one snapshot of the wave's workflow status: status, current
step, and any blocking reason. This is the same query the console polls.`,
	Args: cobra.ExactArgs(1),
	RunE: runWavesStatus,
}

var wavesStatusFilter string

func init() {
	rootCmd.AddCommand(wavesCmd)
	wavesCmd.AddCommand(wavesListCmd)
	wavesCmd.AddCommand(wavesStatusCmd)

	wavesListCmd.Flags().StringVar(&wavesStatusFilter, "status", "", "only show waves with this status")
}

func runWavesList(cmd *cobra.Command, args []string) error {
	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	var waves []client.Wave
	if wavesStatusFilter != "" {
		waves, err = clients.wms.ListWavesByStatus(ctx, workflow.Status(wavesStatusFilter))
	} else {
		waves, err = clients.wms.ListWaves(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tORDERS\tWORKFLOW")
	for _, wave := range waves {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", wave.ID, wave.Status, len(wave.OrderIDs), wave.WorkflowID)
	}
	return w.Flush()
}

func runWavesStatus(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid wave id %q", args[0])
	}

	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	status, err := clients.wms.GetWorkflowStatus(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("status: %s\n", status.Status)
	if status.CurrentStep != "" {
		fmt.Printf("step: %s\n", status.CurrentStep)
	}
	if status.BlockingReason != "" {
		fmt.Printf("blocked: %s\n", status.BlockingReason)
	}
	return nil
}
