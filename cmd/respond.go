package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wakelight/pkg/alert"
	"wakelight/pkg/config"
	"wakelight/pkg/engine"
	"wakelight/pkg/models"
)

// Flag values for 'snooze'
var (
	snoozeMinutes int
	snoozeAction  string
)

var stopCmd = &cobra.Command{
	Use:   "stop [alarm-id]",
	Short: "Stop a ringing alarm",
	Long: `Answer an alarm with Stop: disable it, clear its fired state, and
silence the sound. Goes through the running daemon when one is reachable so
its playback handle is released; otherwise acts on the store directly.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if respondViaDaemon(args[0], "stop", nil) {
			fmt.Printf("Stopped alarm %s\n", args[0])
			return
		}

		if err := offlineResponder().Stop(context.Background(), args[0]); err != nil {
			fmt.Printf("Error stopping alarm: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Stopped alarm %s (daemon not running)\n", args[0])
	},
}

var snoozeCmd = &cobra.Command{
	Use:   "snooze [alarm-id]",
	Short: "Snooze a ringing alarm",
	Long: `Answer an alarm with Snooze: re-arm it for now plus the snooze
duration and silence the sound. Duration and device action default to the
alarm's own settings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body := map[string]any{
			"minutes":      snoozeMinutes,
			"deviceAction": snoozeAction,
		}
		if respondViaDaemon(args[0], "snooze", body) {
			fmt.Printf("Snoozed alarm %s\n", args[0])
			return
		}

		if err := offlineResponder().Snooze(context.Background(), args[0], snoozeMinutes, snoozeAction); err != nil {
			fmt.Printf("Error snoozing alarm: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snoozed alarm %s (daemon not running)\n", args[0])
	},
}

// respondViaDaemon posts the action to the daemon's control API. Returns
// false when the daemon is unreachable; a reachable daemon that rejects the
// action is fatal.
func respondViaDaemon(alarmID, action string, body map[string]any) bool {
	url := fmt.Sprintf("http://%s/alarms/%s/%s", config.ListenAddr(), alarmID, action)

	req := resty.New().R()
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return false
	}
	if resp.IsError() {
		fmt.Printf("Error: daemon rejected %s: %s\n", action, resp.String())
		os.Exit(1)
	}
	return true
}

// offlineResponder acts on the store directly. There is no daemon playback
// handle to release, so the sounder and notifier are no-ops.
func offlineResponder() *engine.Responder {
	return engine.NewResponder(openAlarmStore(), newGateway(), noopSounder{}, noopNotifier{}, logrus.StandardLogger())
}

type noopSounder struct{}

func (noopSounder) Start(string) error { return nil }
func (noopSounder) Stop()              {}

type noopNotifier struct{}

func (noopNotifier) Raise(alert.Alert) {}
func (noopNotifier) Dismiss(string)    {}

var _ engine.Sounder = noopSounder{}
var _ engine.Notifier = noopNotifier{}

func init() {
	snoozeCmd.Flags().IntVar(&snoozeMinutes, "minutes", 0, "Snooze duration, 0 uses the alarm's setting")
	snoozeCmd.Flags().StringVar(&snoozeAction, "action", "", fmt.Sprintf("Device action: %s, %s, or %s (empty uses the alarm's setting)",
		models.SnoozeActionNone, models.SnoozeActionOn, models.SnoozeActionOff))

	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(snoozeCmd)
}
