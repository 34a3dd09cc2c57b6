package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wakelight/pkg/models"
)

// Flag values for 'alarms add'
var (
	addTime         string
	addLabel        string
	addSound        string
	addSnooze       bool
	addSnoozeMin    int
	addSnoozeAction string
	addDevices      []string
	addOff          bool
	addBrightness   int
	addColor        string
)

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "Manage alarms",
	Long:  `List, add, remove, enable, or disable alarms in the shared store.`,
}

var alarmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alarms",
	Run: func(cmd *cobra.Command, args []string) {
		alarms, err := openAlarmStore().List()
		if err != nil {
			fmt.Printf("Error loading alarms: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(alarms); err != nil {
				fmt.Printf("Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if len(alarms) == 0 {
			fmt.Println("No alarms.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tENABLED\tDEVICES\tSOUND\tSNOOZE\tLABEL")
		fmt.Fprintln(w, "--\t----\t-------\t-------\t-----\t------\t-----")
		for _, a := range alarms {
			target := a.Target().Local().Format("15:04")
			if a.SnoozeTime != nil {
				target += " (snoozed)"
			}
			snooze := "off"
			if a.Snooze {
				snooze = fmt.Sprintf("%dm/%s", a.SnoozeDuration, a.SnoozeDeviceAction)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\t%s\t%s\n",
				a.ID, target, a.Enabled, len(a.Devices), a.Sound, snooze, a.Label)
		}
		w.Flush()
	},
}

var alarmsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one alarm with its saved device settings",
	Long: `Show an alarm in full. Device entries reflect the per-device settings
saved in the store when one exists for the (alarm, device) pair.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openAlarmStore()
		a, err := store.Get(args[0])
		if err != nil {
			fmt.Printf("Error loading alarm: %v\n", err)
			os.Exit(1)
		}

		for i, d := range a.Devices {
			saved, ok, err := store.DeviceSettings(a.ID, d.Device)
			if err != nil {
				fmt.Printf("Error loading device settings: %v\n", err)
				os.Exit(1)
			}
			if ok {
				a.Devices[i] = saved
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(a); err != nil {
				fmt.Printf("Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		target := a.Target().Local().Format("15:04")
		if a.SnoozeTime != nil {
			target += " (snoozed)"
		}
		fmt.Printf("ID:      %s\n", a.ID)
		fmt.Printf("Time:    %s\n", target)
		fmt.Printf("Enabled: %t\n", a.Enabled)
		fmt.Printf("Sound:   %s\n", a.Sound)
		if a.Snooze {
			fmt.Printf("Snooze:  %dm, device action %s\n", a.SnoozeDuration, a.SnoozeDeviceAction)
		} else {
			fmt.Println("Snooze:  off")
		}
		if a.Label != "" {
			fmt.Printf("Label:   %s\n", a.Label)
		}
		for _, d := range a.Devices {
			state := "off"
			if d.OnOff {
				state = fmt.Sprintf("on, brightness %d, color #%06x", d.Brightness, d.Color)
			}
			fmt.Printf("Device:  %s (%s): %s\n", d.Device, d.SKU, state)
		}
	},
}

var alarmsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an alarm",
	Long: `Add an alarm firing daily at --time. Each --device takes "SKU:DEVICE"
(the device id may itself contain colons); --off, --brightness and --color
apply to every listed device.`,
	Run: func(cmd *cobra.Command, args []string) {
		wake, err := parseWakeTime(addTime)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		color, err := parseColor(addColor)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		alarm := models.Alarm{
			ID:                 uuid.New().String(),
			Time:               wake,
			Enabled:            true,
			Sound:              addSound,
			Snooze:             addSnooze,
			SnoozeDuration:     addSnoozeMin,
			SnoozeDeviceAction: addSnoozeAction,
			Label:              addLabel,
		}
		for _, spec := range addDevices {
			sku, device, err := parseDeviceSpec(spec)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			alarm.Devices = append(alarm.Devices, models.DeviceAction{
				Device:     device,
				SKU:        sku,
				OnOff:      !addOff,
				Brightness: addBrightness,
				Color:      color,
			})
		}

		if err := alarm.Validate(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		store := openAlarmStore()
		if err := store.Add(alarm); err != nil {
			fmt.Printf("Error saving alarm: %v\n", err)
			os.Exit(1)
		}
		// Record per-device defaults alongside the alarm, released on delete.
		for _, d := range alarm.Devices {
			if err := store.SetDeviceSettings(alarm.ID, d.Device, d); err != nil {
				fmt.Printf("Error saving device settings: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Printf("Added alarm %s at %s\n", alarm.ID, wake.Format("15:04"))
	},
}

var alarmsRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove an alarm and its per-device settings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := openAlarmStore().Delete(args[0]); err != nil {
			fmt.Printf("Error removing alarm: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed alarm %s\n", args[0])
	},
}

var alarmsEnableCmd = &cobra.Command{
	Use:   "enable [id]",
	Short: "Enable an alarm and re-arm it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, err := openAlarmStore().Update(args[0], func(a *models.Alarm) {
			a.Enabled = true
			a.AlertShown = false
			a.SnoozeTime = nil
		})
		if err != nil {
			fmt.Printf("Error enabling alarm: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Enabled alarm %s\n", args[0])
	},
}

var alarmsDisableCmd = &cobra.Command{
	Use:   "disable [id]",
	Short: "Disable an alarm",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, err := openAlarmStore().Update(args[0], func(a *models.Alarm) {
			a.Enabled = false
		})
		if err != nil {
			fmt.Printf("Error disabling alarm: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Disabled alarm %s\n", args[0])
	},
}

// parseWakeTime turns "HH:MM" into today's date at that time, local zone.
// Only the hour and minute matter for matching.
func parseWakeTime(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

// parseDeviceSpec splits "SKU:DEVICE". Govee device ids contain colons, so
// only the first one separates.
func parseDeviceSpec(spec string) (sku, device string, err error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid device %q, expected SKU:DEVICE", spec)
	}
	return parts[0], parts[1], nil
}

// parseColor parses a hex RGB string like "ffcc00" or "#ffcc00".
func parseColor(s string) (int, error) {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil || v < 0 || v > 0xFFFFFF {
		return 0, fmt.Errorf("invalid color %q, expected 24-bit hex RGB", s)
	}
	return int(v), nil
}

func init() {
	alarmsAddCmd.Flags().StringVar(&addTime, "time", "", "Wake time as HH:MM (required)")
	alarmsAddCmd.Flags().StringVar(&addLabel, "label", "", "Display label")
	alarmsAddCmd.Flags().StringVar(&addSound, "sound", models.SoundNone, "Bundled sound name, file:// path, or None")
	alarmsAddCmd.Flags().BoolVar(&addSnooze, "snooze", false, "Offer the snooze action")
	alarmsAddCmd.Flags().IntVar(&addSnoozeMin, "snooze-duration", models.DefaultSnoozeDuration, "Snooze duration in minutes")
	alarmsAddCmd.Flags().StringVar(&addSnoozeAction, "snooze-action", models.SnoozeActionNone, "Device action on snooze: None, ON, or OFF")
	alarmsAddCmd.Flags().StringArrayVar(&addDevices, "device", nil, "Device as SKU:DEVICE (repeatable)")
	alarmsAddCmd.Flags().BoolVar(&addOff, "off", false, "Turn the devices off instead of on")
	alarmsAddCmd.Flags().IntVar(&addBrightness, "brightness", models.DefaultBrightness, "Brightness 1-100")
	alarmsAddCmd.Flags().StringVar(&addColor, "color", "ffffff", "Color as hex RGB")
	alarmsAddCmd.MarkFlagRequired("time")

	alarmsCmd.AddCommand(alarmsListCmd)
	alarmsCmd.AddCommand(alarmsShowCmd)
	alarmsCmd.AddCommand(alarmsAddCmd)
	alarmsCmd.AddCommand(alarmsRemoveCmd)
	alarmsCmd.AddCommand(alarmsEnableCmd)
	alarmsCmd.AddCommand(alarmsDisableCmd)
	rootCmd.AddCommand(alarmsCmd)
}
