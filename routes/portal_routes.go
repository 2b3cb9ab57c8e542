package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/huctech/certificate-portal/handlers"
)

func PortalRoutes(app *fiber.App, h *handlers.PortalHandler) {
	app.Get("/int", h.ShowPortal)
	app.Post("/int/lookup", h.LookupCertificate)
	app.Get("/int/:id", h.ShowCertificate)
	app.Get("/int/:id/pdf", h.DownloadCertificatePDF)
}
