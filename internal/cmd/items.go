package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tempest-ops/opsdeck/internal/client"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List and search inventory items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	RunE:  runItemsList,
}

var itemsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search items by name or SKU",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsSearch,
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsSearchCmd)
}

func runItemsList(cmd *cobra.Command, args []string) error {
	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	items, err := clients.ims.ListItems(ctx)
	if err != nil {
		return err
	}
	return printItems(items)
}

func runItemsSearch(cmd *cobra.Command, args []string) error {
	clients, err := newServiceClients()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	items, err := clients.ims.SearchItems(ctx, args[0])
	if err != nil {
		return err
	}
	return printItems(items)
}

func printItems(items []client.Item) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSKU\tNAME\tACTIVE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", it.ID, it.SKU, it.Name, it.Active)
	}
	return w.Flush()
}
