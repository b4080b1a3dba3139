// Package api exposes the viewer over HTTP for browser or remote front ends.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"epss-viewer/internal/cve"
	"epss-viewer/internal/display"
	"epss-viewer/internal/viewer"
)

type validResponse struct {
	CVE   string `json:"cve"`
	Valid bool   `json:"valid"`
}

type errorResponse struct {
	Error string       `json:"error"`
	Kind  display.Kind `json:"kind,omitempty"`
}

type scoreResponse struct {
	CVE  string `json:"cve"`
	Date string `json:"date"`
	display.Payload
}

type handler struct {
	viewer *viewer.Viewer
	logger *zap.Logger
	now    func() time.Time
}

// NewApp returns a fiber app serving score lookups through v.
func NewApp(v *viewer.Viewer, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{viewer: v, logger: logger, now: time.Now}

	app := fiber.New(fiber.Config{
		AppName:               "epss-viewer",
		ReadTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})
	app.Use(fiberrecover.New())
	app.Use(h.logRequest)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	v1 := app.Group("/api/v1")
	v1.Get("/cve/:id/valid", h.validate)
	v1.Get("/epss/:id", h.score)
	return app
}

func (h *handler) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Info("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
	return err
}

func (h *handler) validate(c *fiber.Ctx) error {
	id := c.Params("id")
	return c.JSON(validResponse{CVE: id, Valid: cve.IsValid(id)})
}

func (h *handler) score(c *fiber.Ctx) error {
	id := c.Params("id")
	if !cve.IsValid(id) {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: viewer.MsgInvalidCVE})
	}
	date := c.Query("date", viewer.Today(h.now()))
	if !viewer.ValidDate(date) {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "date must be YYYY-MM-DD"})
	}

	payload, err := h.viewer.BuildDisplay(h.viewer.QueryScore(id, date))
	if err != nil {
		var de *display.Error
		if !errors.As(err, &de) {
			return err
		}
		return c.Status(statusFor(de.Kind)).JSON(errorResponse{Error: de.Message, Kind: de.Kind})
	}
	return c.JSON(scoreResponse{CVE: id, Date: date, Payload: payload})
}

func statusFor(kind display.Kind) int {
	switch kind {
	case display.KindNoData:
		return fiber.StatusNotFound
	case display.KindSelection, display.KindInvalid:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadGateway
	}
}
