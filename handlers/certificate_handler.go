package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/huctech/certificate-portal/models"
	"github.com/huctech/certificate-portal/notifications"
	"github.com/huctech/certificate-portal/repository"
	"github.com/huctech/certificate-portal/services"
)

var validate = validator.New()

type CertificateHandler struct {
	Repo   *repository.CertificateRepository
	Assets *services.AssetService
}

func NewCertificateHandler(repo *repository.CertificateRepository, assets *services.AssetService) *CertificateHandler {
	return &CertificateHandler{Repo: repo, Assets: assets}
}

type CreateCertificateRequest struct {
	InternID string `json:"internId" validate:"omitempty,min=4,max=64"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,min=2"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	PDFURL   string `json:"pdfUrl" validate:"omitempty,url"`
}

type UpdateCertificateRequest struct {
	InternID *string `json:"internId" validate:"omitempty,min=4,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"fullName" validate:"omitempty,min=2"`
	Title    *string `json:"title"`
	Duration *string `json:"duration"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
	PDFURL   *string `json:"pdfUrl" validate:"omitempty,url"`
}

func (h *CertificateHandler) ListCertificates(c *fiber.Ctx) error {
	filter := repository.Filter{
		InternID: c.Query("internId"),
		Email:    c.Query("email"),
	}

	certs, err := h.Repo.List(c.Context(), filter)
	if err != nil {
		log.Printf("[ERROR] list certificates: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch certificates"})
	}

	if certs == nil {
		certs = []models.Certificate{}
	}
	return c.JSON(certs)
}

func (h *CertificateHandler) CreateCertificate(c *fiber.Ctx) error {
	var req CreateCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	internID := req.InternID
	if internID == "" {
		var err error
		internID, err = h.Repo.NextInternID(c.Context())
		if err != nil {
			log.Printf("[ERROR] generate intern id: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create certificate"})
		}
	}

	cert := models.Certificate{
		InternID: internID,
		Email:    req.Email,
		FullName: req.FullName,
		Title:    req.Title,
		Duration: req.Duration,
		ImageURL: req.ImageURL,
		PDFURL:   req.PDFURL,
	}

	if err := h.Repo.Create(c.Context(), &cert); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A certificate with that intern ID or email already exists"})
		}
		log.Printf("[ERROR] create certificate: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create certificate"})
	}

	go notifications.SendCertificateIssued(cert.FullName, cert.Email, cert.InternID)

	return c.Status(fiber.StatusCreated).JSON(cert)
}

func (h *CertificateHandler) GetCertificate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	cert, err := h.Repo.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
		}
		log.Printf("[ERROR] get certificate: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch certificate"})
	}
	return c.JSON(cert)
}

func (h *CertificateHandler) UpdateCertificate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	var req UpdateCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	patch := repository.Patch{
		InternID: req.InternID,
		Email:    req.Email,
		FullName: req.FullName,
		Title:    req.Title,
		Duration: req.Duration,
		ImageURL: req.ImageURL,
		PDFURL:   req.PDFURL,
	}

	cert, err := h.Repo.Update(c.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A certificate with that intern ID or email already exists"})
		}
		log.Printf("[ERROR] update certificate: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update certificate"})
	}
	return c.JSON(cert)
}

func (h *CertificateHandler) DeleteCertificate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	if err := h.Repo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
		}
		log.Printf("[ERROR] delete certificate: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete certificate"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UploadCertificateImage replaces the certificate image with an uploaded
// file. Any pre-rendered PDF is stale afterwards, so pdfUrl is cleared and
// the backfill job regenerates it.
func (h *CertificateHandler) UploadCertificateImage(c *fiber.Ctx) error {
	if h.Assets == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Asset storage is not configured"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	cert, err := h.Repo.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
		}
		log.Printf("[ERROR] get certificate: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch certificate"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Certificate image file is required"})
	}

	imageURL, err := h.Assets.UploadImage(c.Context(), file, cert.InternID)
	if err != nil {
		log.Printf("[ERROR] upload certificate image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
	}

	emptyPDF := ""
	updated, err := h.Repo.Update(c.Context(), id, repository.Patch{ImageURL: &imageURL, PDFURL: &emptyPDF})
	if err != nil {
		log.Printf("[ERROR] store image url: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update certificate"})
	}
	return c.JSON(updated)
}
