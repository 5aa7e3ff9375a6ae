package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var shipmentsCmd = &cobra.Command{
	Use:   "shipments",
	Short: "List and inspect shipments",
}

var shipmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shipments",
	RunE:  runShipmentsList,
}

var shipmentsShowCmd = &cobra.Command{
	Use:   "show <shipment-id>",
	Short: "Print one shipment with its parcels",
	Args:  cobra.ExactArgs(1),
	RunE:  runShipmentsShow,
}

func init() {
	rootCmd.AddCommand(shipmentsCmd)
	shipmentsCmd.AddCommand(shipmentsListCmd)
	shipmentsCmd.AddCommand(shipmentsShowCmd)
}

func runShipmentsList(cmd *cobra.Command, args []string) error {
	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	shipments, err := clients.sms.ListShipments(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tORDER\tSTATUS\tCARRIER\tTRACKING")
	for _, s := range shipments {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", s.ID, s.OrderID, s.Status, s.Carrier, s.TrackingNumber)
	}
	return w.Flush()
}

func runShipmentsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid shipment id %q", args[0])
	}

	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	shipment, err := clients.sms.GetShipment(ctx, id)
	if err != nil {
		return err
	}
	parcels, err := clients.sms.GetParcels(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("shipment %d  order %d  %s\n", shipment.ID, shipment.OrderID, shipment.Status)
	if shipment.Carrier != "" {
		fmt.Printf("carrier: %s %s\n", shipment.Carrier, shipment.ServiceLevel)
	}
	if shipment.TrackingNumber != "" {
		fmt.Printf("tracking: %s\n", shipment.TrackingNumber)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PARCEL\tWEIGHT\tL\tW\tH")
	for _, p := range parcels {
		fmt.Fprintf(w, "%d\t%.2f\t%.1f\t%.1f\t%.1f\n", p.ID, p.Weight, p.Length, p.Width, p.Height)
	}
	return w.Flush()
}
