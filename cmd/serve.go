package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wakelight/pkg/alert"
	"wakelight/pkg/api"
	"wakelight/pkg/audio"
	"wakelight/pkg/config"
	"wakelight/pkg/engine"
)

var noAutostart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the alarm daemon",
	Long: `Run the foreground scheduler loop and the control API. The loop ticks
once a second against the persisted alarm list; alerts are answered through
the API (or the stop/snooze commands, which call it).`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logrus.StandardLogger()

		alarms := openAlarmStore()
		gateway := newGateway()
		sound := audio.NewSession(config.SoundDir())
		center := alert.NewCenter()

		pipeline := engine.NewPipeline(alarms, gateway, sound, center, log)
		responder := engine.NewResponder(alarms, gateway, sound, center, log)
		scheduler := engine.NewScheduler(alarms, pipeline, config.TickInterval(), log)

		if !noAutostart {
			if err := setupAutostart(true); err != nil {
				log.WithError(err).Warn("registering autostart")
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go scheduler.Run(ctx)

		srv := api.New(alarms, center, responder)
		go func() {
			if err := srv.Listen(config.ListenAddr()); err != nil {
				log.WithError(err).Fatal("control API failed")
			}
		}()
		log.WithField("addr", config.ListenAddr()).Info("control API listening")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info("shutting down")
		cancel()
		pipeline.Wait()
		sound.Stop()
		if err := srv.Shutdown(); err != nil {
			log.WithError(err).Warn("stopping control API")
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noAutostart, "no-autostart", false, "Skip registering the daemon to start at login")
	rootCmd.AddCommand(serveCmd)
}
