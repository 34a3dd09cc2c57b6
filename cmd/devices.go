package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the account's devices",
	Long:  `Fetch the devices registered to the configured API key. Use the SKU and device id shown here with 'alarms add --device'.`,
	Run: func(cmd *cobra.Command, args []string) {
		devices, err := newGateway().Devices(context.Background())
		if err != nil {
			fmt.Printf("Error fetching devices: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(devices); err != nil {
				fmt.Printf("Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if len(devices) == 0 {
			fmt.Println("No devices.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SKU\tDEVICE\tNAME\tTYPE")
		fmt.Fprintln(w, "---\t------\t----\t----")
		for _, d := range devices {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.SKU, d.Device, d.DeviceName, d.Type)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
