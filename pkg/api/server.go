package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"wakelight/pkg/alert"
	"wakelight/pkg/models"
	"wakelight/pkg/store"
)

// AlarmLister is the read-only alarm access the API needs.
type AlarmLister interface {
	List() ([]models.Alarm, error)
}

// Responder handles stop and snooze answers.
type Responder interface {
	Stop(ctx context.Context, alarmID string) error
	Snooze(ctx context.Context, alarmID string, minutes int, action string) error
}

// Server is the daemon's control surface: it lists alarms and raised alerts
// and carries Stop/Snooze answers to the response handler. It plays the role
// notification action buttons play on a phone.
type Server struct {
	app       *fiber.App
	alarms    AlarmLister
	center    *alert.Center
	responder Responder
}

type snoozeRequest struct {
	Minutes      int    `json:"minutes"`
	DeviceAction string `json:"deviceAction"`
}

// New builds the HTTP server and its routes.
func New(alarms AlarmLister, center *alert.Center, responder Responder) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		alarms:    alarms,
		center:    center,
		responder: responder,
	}

	s.app.Use(recover.New())
	s.app.Use(logger.New())

	s.app.Get("/alarms", s.listAlarms)
	s.app.Get("/alerts", s.listAlerts)
	s.app.Post("/alarms/:id/stop", s.stopAlarm)
	s.app.Post("/alarms/:id/snooze", s.snoozeAlarm)

	return s
}

// Listen blocks serving on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) listAlarms(c *fiber.Ctx) error {
	alarms, err := s.alarms.List()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if alarms == nil {
		alarms = []models.Alarm{}
	}
	return c.JSON(alarms)
}

func (s *Server) listAlerts(c *fiber.Ctx) error {
	return c.JSON(s.center.Active())
}

func (s *Server) stopAlarm(c *fiber.Ctx) error {
	if err := s.responder.Stop(c.UserContext(), c.Params("id")); err != nil {
		return respondError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) snoozeAlarm(c *fiber.Ctx) error {
	var req snoozeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := s.responder.Snooze(c.UserContext(), c.Params("id"), req.Minutes, req.DeviceAction); err != nil {
		return respondError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func respondError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
