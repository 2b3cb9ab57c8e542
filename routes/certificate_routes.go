package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/huctech/certificate-portal/handlers"
)

func CertificateRoutes(app *fiber.App, h *handlers.CertificateHandler) {
	api := app.Group("/api")

	certs := api.Group("/certificates")
	certs.Get("", h.ListCertificates)
	certs.Post("", h.CreateCertificate)
	certs.Get("/:id", h.GetCertificate)
	certs.Put("/:id", h.UpdateCertificate)
	certs.Delete("/:id", h.DeleteCertificate)
	certs.Post("/:id/image", h.UploadCertificateImage)
}
