package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/huctech/certificate-portal/models"
	"github.com/huctech/certificate-portal/repository"
	"github.com/huctech/certificate-portal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type PortalHandler struct {
	Lookup   *services.LookupService
	Repo     *repository.CertificateRepository
	Renderer services.Renderer
}

func NewPortalHandler(lookup *services.LookupService, repo *repository.CertificateRepository, renderer services.Renderer) *PortalHandler {
	return &PortalHandler{Lookup: lookup, Repo: repo, Renderer: renderer}
}

type portalPageData struct {
	Identifier  string
	Error       string
	Certificate *models.Certificate
}

func (h *PortalHandler) ShowPortal(c *fiber.Ctx) error {
	return h.renderPage(c, fiber.StatusOK, "portal.html", portalPageData{})
}

func (h *PortalHandler) LookupCertificate(c *fiber.Ctx) error {
	input := strings.TrimSpace(c.FormValue("identifier"))
	if input == "" {
		return h.renderPage(c, fiber.StatusBadRequest, "portal.html", portalPageData{
			Error: "Enter your registered email or internship ID.",
		})
	}

	cert, err := h.Lookup.Resolve(c.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrNoMatch) {
			message := "No certificate found for the provided intern ID."
			if strings.Contains(input, "@") {
				message = "No certificate found for the provided email."
			}
			return h.renderPage(c, fiber.StatusNotFound, "portal.html", portalPageData{
				Identifier: input,
				Error:      message,
			})
		}
		log.Printf("[ERROR] lookup certificate: %v", err)
		return h.renderPage(c, fiber.StatusInternalServerError, "portal.html", portalPageData{
			Identifier: input,
			Error:      "Failed to fetch certificate.",
		})
	}

	return c.Redirect("/int/"+url.PathEscape(cert.InternID), fiber.StatusSeeOther)
}

func (h *PortalHandler) ShowCertificate(c *fiber.Ctx) error {
	cert, err := h.certificateByInternID(c)
	if err != nil {
		if errors.Is(err, services.ErrNoMatch) {
			return h.renderPage(c, fiber.StatusNotFound, "viewer.html", portalPageData{
				Error: "Certificate not found.",
			})
		}
		log.Printf("[ERROR] fetch certificate: %v", err)
		return h.renderPage(c, fiber.StatusInternalServerError, "viewer.html", portalPageData{
			Error: "Failed to fetch certificate.",
		})
	}

	return h.renderPage(c, fiber.StatusOK, "viewer.html", portalPageData{Certificate: cert})
}

func (h *PortalHandler) DownloadCertificatePDF(c *fiber.Ctx) error {
	cert, err := h.certificateByInternID(c)
	if err != nil {
		if errors.Is(err, services.ErrNoMatch) {
			return h.renderPage(c, fiber.StatusNotFound, "not_found.html", nil)
		}
		log.Printf("[ERROR] fetch certificate: %v", err)
		return h.renderPage(c, fiber.StatusInternalServerError, "error.html", "Failed to fetch certificate.")
	}

	// A pre-rendered PDF skips the conversion entirely.
	if cert.PDFURL != "" {
		return c.Redirect(cert.PDFURL, fiber.StatusFound)
	}
	if cert.ImageURL == "" {
		return h.renderPage(c, fiber.StatusNotFound, "error.html", "No certificate image is available for download.")
	}

	pdfBytes, err := h.Renderer.RenderImage(c.Context(), cert.ImageURL)
	if err != nil {
		log.Printf("🔥 Failed to render PDF for intern %s: %v", cert.InternID, err)
		return h.renderPage(c, fiber.StatusBadGateway, "error.html", "Failed to load certificate image for PDF download.")
	}

	name := cert.InternID
	if name == "" {
		name = cert.FullName
	}
	if name == "" {
		name = "download"
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="Certificate-%s.pdf"`, name))
	return c.Send(pdfBytes)
}

// NotFound is the catch-all for unmatched routes: JSON under /api, the 404
// page everywhere else.
func (h *PortalHandler) NotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	}
	return h.renderPage(c, fiber.StatusNotFound, "not_found.html", nil)
}

// certificateByInternID applies the viewer contract: list by the intern ID
// path parameter and require the first record to carry it exactly.
func (h *PortalHandler) certificateByInternID(c *fiber.Ctx) (*models.Certificate, error) {
	internID := c.Params("id")
	if unescaped, err := url.PathUnescape(internID); err == nil {
		internID = unescaped
	}

	certs, err := h.Repo.List(c.Context(), repository.Filter{InternID: internID})
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 || certs[0].InternID != internID {
		return nil, services.ErrNoMatch
	}
	return &certs[0], nil
}

func (h *PortalHandler) renderPage(c *fiber.Ctx, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[ERROR] render %s: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
