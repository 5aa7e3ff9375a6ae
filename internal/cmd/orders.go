package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and inspect orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	RunE:  runOrdersList,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Print one order with its lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersShowCmd)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	orders, err := clients.oms.ListOrders(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tSTATUS\tWORKFLOW")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", o.ID, o.OrderNumber, o.Status, o.WorkflowID)
	}
	return w.Flush()
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}

	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	order, err := clients.oms.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	lines, err := clients.oms.GetOrderLines(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("order %d  %s  %s\n", order.ID, order.OrderNumber, order.Status)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tSKU\tQTY")
	for _, l := range lines {
		fmt.Fprintf(w, "%d\t%s\t%d\n", l.ID, l.SKU, l.Quantity)
	}
	return w.Flush()
}
