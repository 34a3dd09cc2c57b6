package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wakelight/pkg/ical"
)

var exportOut string

var icalCmd = &cobra.Command{
	Use:   "ical",
	Short: "Exchange alarms with iCalendar feeds",
}

var icalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export enabled alarms as an iCal calendar",
	Run: func(cmd *cobra.Command, args []string) {
		alarms, err := openAlarmStore().List()
		if err != nil {
			fmt.Printf("Error loading alarms: %v\n", err)
			os.Exit(1)
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				fmt.Printf("Error creating %s: %v\n", exportOut, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if err := ical.Export(out, alarms); err != nil {
			fmt.Printf("Error exporting: %v\n", err)
			os.Exit(1)
		}
	},
}

var icalImportCmd = &cobra.Command{
	Use:   "import [url]",
	Short: "Import feed events as disabled alarm templates",
	Long: `Fetch an iCal feed and add one disabled alarm per timed event, with
the wake time taken from the event start. Enable them and attach devices with
the alarms commands.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		alarms, err := ical.Import(args[0])
		if err != nil {
			fmt.Printf("Error importing: %v\n", err)
			os.Exit(1)
		}

		store := openAlarmStore()
		for _, a := range alarms {
			if err := store.Add(a); err != nil {
				fmt.Printf("Error saving alarm: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Added alarm %s at %s (%s)\n", a.ID, a.Time.Local().Format("15:04"), a.Label)
		}
		if len(alarms) == 0 {
			fmt.Println("No timed events in feed.")
		}
	},
}

func init() {
	icalExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to a file instead of stdout")

	icalCmd.AddCommand(icalExportCmd)
	icalCmd.AddCommand(icalImportCmd)
	rootCmd.AddCommand(icalCmd)
}
