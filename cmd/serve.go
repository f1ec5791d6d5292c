package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"content-sync/core/loader"
	"content-sync/core/logger"
	"content-sync/core/middleware/auth"
	"content-sync/core/middleware/rayid"
	"content-sync/feature/preview"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveFlags sourceFlags

// serveCmd exposes the read-only plan preview over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the import plan preview over HTTP",
	Long:  `Starts the HTTP server with the read-only plan preview endpoints.`,
	RunE:  runServe,
}

func init() {
	serveFlags.register(serveCmd)
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, &serveFlags)
	if err != nil {
		return err
	}
	logg := rt.logger
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	app := newApp(logg, rt.cfg.Server.ApiKey)

	mgr := loader.NewManager()
	mgr.Register(preview.NewFeature(rt.spec, logg))
	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	go func() {
		logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
		if err := app.Listen(rt.cfg.Server.Address()); err != nil {
			logg.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logg.Info("Shutting down server...")
	return app.Shutdown()
}

// newApp builds the fiber app with ray id, request logging, health and auth.
func newApp(logg *zap.Logger, apiKey string) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// RayID must be first to trace everything.
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(auth.New(auth.Config{ApiKey: apiKey, Skip: []string{"/health"}}))
	return app
}
