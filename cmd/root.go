package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wakelight/pkg/config"
	"wakelight/pkg/govee"
	"wakelight/pkg/store"
)

var (
	cfgFile    string
	jsonOutput bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wakelight",
	Short: "An alarm clock that wakes your smart lights",
	Long: `wakelight fires alarms at a scheduled time of day: it drives a set of
Govee lights through the cloud API, plays a looping sound, and raises an
actionable alert you answer with stop or snooze.

Run 'wakelight serve' for the daemon, or schedule 'wakelight tick' from cron
or a systemd timer for the coarse background cadence.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		config.Init(cfgFile)
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wakelight.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openAlarmStore opens the shared alarm store, exiting on failure.
func openAlarmStore() *store.AlarmStore {
	kv, err := store.Open(config.StorePath())
	if err != nil {
		fmt.Printf("Error opening alarm store: %v\n", err)
		os.Exit(1)
	}
	return store.NewAlarmStore(kv)
}

// newGateway builds the device command gateway from stored credentials,
// exiting when none are configured.
func newGateway() *govee.Client {
	cfg, err := config.Gateway()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return govee.New(cfg)
}
