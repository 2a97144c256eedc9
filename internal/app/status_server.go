package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vk/tickgraph/internal/ctxlog"
)

// StatusServer returns the HTTP surface over the last run's status:
//
//	GET /health             liveness
//	GET /status             every migrator's report
//	GET /status/:migrator   one migrator's report
//	GET /metrics            Prometheus exposition
func (a *App) StatusServer() *fiber.App {
	srv := fiber.New()

	srv.Get("/health", func(c fiber.Ctx) error {
		return c.SendString("OK")
	})

	srv.Get("/status", func(c fiber.Ctx) error {
		snap := a.snapshot.Load()
		if snap == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no run has finished yet"})
		}
		return c.JSON(snap)
	})

	srv.Get("/status/:migrator", func(c fiber.Ctx) error {
		snap := a.snapshot.Load()
		if snap == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no run has finished yet"})
		}
		report, ok := snap.Find(c.Params("migrator"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "migrator not found"})
		}
		return c.JSON(report)
	})

	srv.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.prometheus, promhttp.HandlerOpts{})))
	return srv
}

// startStatusServer runs the status server in the background.
func (a *App) startStatusServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	a.server = a.StatusServer()
	addr := fmt.Sprintf(":%d", a.cfg.StatusPort)

	go func() {
		logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := a.server.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			logger.Error("Status server failed", "error", err)
		}
	}()
}

func (a *App) closeStatusServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if a.server == nil {
		return
	}
	logger.Info("🩺 Shutting down status server")
	if err := a.server.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Error("Status server shutdown failed", "error", err)
	}
}
