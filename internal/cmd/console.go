package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tempest-ops/opsdeck/internal/config"
	"github.com/tempest-ops/opsdeck/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console [wave-id | order <order-id>]",
	Short: "Open the interactive operations console",
	Long: `Open the interactive console. The console shows the live wave and
order lists, per-entity workflow status with gated operator actions,
shipment states, and the carrier rate-shopping dialog.

A wave id (or "order <id>") jumps straight to that entity's detail screen.
Polling pauses automatically while the terminal window is unfocused.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the console needs a terminal; use the waves/orders subcommands for scripting")
	}

	var waveID, orderID int64
	switch {
	case len(args) == 2 && args[0] == "order":
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[1])
		}
		orderID = id
	case len(args) == 1:
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid wave id %q", args[0])
		}
		waveID = id
	case len(args) == 2:
		return fmt.Errorf("usage: opsdeck console [wave-id | order <order-id>]")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return tui.Run(cfg, waveID, orderID)
}
