package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	config "github.com/huctech/certificate-portal/configs"
	"github.com/huctech/certificate-portal/database"
	"github.com/huctech/certificate-portal/handlers"
	"github.com/huctech/certificate-portal/jobs"
	"github.com/huctech/certificate-portal/notifications"
	"github.com/huctech/certificate-portal/repository"
	"github.com/huctech/certificate-portal/routes"
	"github.com/huctech/certificate-portal/services"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}

	notifications.InitEmailService()

	repo := repository.NewCertificateRepository(db)
	lookup := services.NewLookupService(repo)
	renderer := services.NewChromeRenderer()

	assets, err := services.NewAssetService()
	if err != nil {
		log.Printf("⚠️ Cloudinary not configured, image uploads and PDF backfill disabled: %v", err)
		assets = nil
	}

	c := cron.New()
	if assets != nil {
		c.Schedule(cron.Every(10*time.Minute), jobs.NewPDFBackfillJob(repo, renderer, assets))
		c.Start()
		log.Println("✅ Cron job for PDF backfill scheduled successfully.")
	}

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Internship Certificate Portal",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to the Internship Certificate Portal API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	portalHandler := handlers.NewPortalHandler(lookup, repo, renderer)
	routes.CertificateRoutes(app, handlers.NewCertificateHandler(repo, assets))
	routes.PortalRoutes(app, portalHandler)
	app.Use(portalHandler.NotFound)

	port := config.ConfigOr("PORT", "8080")
	go func() {
		log.Printf("✅ Server is running on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("🔥 Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("🔥 Server shutdown failed: %v", err)
	}
	<-c.Stop().Done()
	if err := database.Close(db); err != nil {
		log.Printf("🔥 Closing database failed: %v", err)
	}
	log.Println("✅ Server stopped cleanly")
}
