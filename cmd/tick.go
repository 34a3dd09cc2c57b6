package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wakelight/pkg/alert"
	"wakelight/pkg/audio"
	"wakelight/pkg/config"
	"wakelight/pkg/engine"
)

var tickLinger time.Duration

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a single evaluation pass",
	Long: `Run one scheduler pass against the persisted alarm list and exit. This
is the coarse background cadence: schedule it from cron or a systemd timer so
alarms fire even when the daemon is not running. It shares the store with the
daemon, so running both never double-fires an alarm.

If the pass starts an alarm sound, the process stays alive for --linger (or
until interrupted) so the alarm is audible.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logrus.StandardLogger()

		alarms := openAlarmStore()
		gateway := newGateway()
		sound := audio.NewSession(config.SoundDir())
		center := alert.NewCenter()

		pipeline := engine.NewPipeline(alarms, gateway, sound, center, log)
		scheduler := engine.NewScheduler(alarms, pipeline, 0, log)

		scheduler.Tick(context.Background())
		pipeline.Wait()

		if tickLinger > 0 && sound.Playing() {
			log.WithField("linger", tickLinger).Info("alarm sound playing, waiting")
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sig:
			case <-time.After(tickLinger):
			}
			sound.Stop()
		}
	},
}

func init() {
	tickCmd.Flags().DurationVar(&tickLinger, "linger", 2*time.Minute, "How long to keep playing a started alarm sound before exiting")
	rootCmd.AddCommand(tickCmd)
}
