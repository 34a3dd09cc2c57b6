package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage start-at-login registration",
	Long: `Register or unregister the daemon to start at login. 'serve' registers
automatically unless run with --no-autostart; 'autostart off' undoes that.`,
}

var autostartOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Start the daemon at login",
	Run: func(cmd *cobra.Command, args []string) {
		if err := setupAutostart(true); err != nil {
			fmt.Printf("Error enabling autostart: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Autostart enabled.")
	},
}

var autostartOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Stop starting the daemon at login",
	Run: func(cmd *cobra.Command, args []string) {
		if err := setupAutostart(false); err != nil {
			fmt.Printf("Error disabling autostart: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Autostart disabled.")
	},
}

// setupAutostart registers (or unregisters) the daemon to start at login, so
// the scheduler survives restarts without manual intervention.
func setupAutostart(enable bool) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}

	// Resolve symlinks if any
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	app := &autostart.App{
		Name:        "wakelight",
		DisplayName: "wakelight",
		Exec:        []string{execPath, "serve", "--no-autostart"},
	}

	if enable {
		if !app.IsEnabled() {
			if err := app.Enable(); err != nil {
				return err
			}
			logrus.Info("autostart enabled")
		}
	} else {
		if app.IsEnabled() {
			if err := app.Disable(); err != nil {
				return err
			}
			logrus.Info("autostart disabled")
		}
	}

	return nil
}

func init() {
	autostartCmd.AddCommand(autostartOnCmd)
	autostartCmd.AddCommand(autostartOffCmd)
	rootCmd.AddCommand(autostartCmd)
}
