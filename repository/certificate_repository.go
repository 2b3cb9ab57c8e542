package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/huctech/certificate-portal/models"
	"github.com/huctech/certificate-portal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("certificate not found")
	ErrDuplicate = errors.New("certificate with that intern ID or email already exists")
)

// Filter narrows a List call to one identifier. When both are set the intern
// ID wins, matching the order the portal resolves identifiers in.
type Filter struct {
	InternID string
	Email    string
}

// Patch describes a partial update; nil fields are left untouched.
type Patch struct {
	InternID *string
	Email    *string
	FullName *string
	Title    *string
	Duration *string
	ImageURL *string
	PDFURL   *string
}

func (p Patch) changes() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.InternID != nil {
		updates["intern_id"] = *p.InternID
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.FullName != nil {
		updates["full_name"] = *p.FullName
	}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Duration != nil {
		updates["duration"] = *p.Duration
	}
	if p.ImageURL != nil {
		updates["image_url"] = *p.ImageURL
	}
	if p.PDFURL != nil {
		updates["pdf_url"] = *p.PDFURL
	}
	return updates
}

// CertificateRepository is the single data-access path for certificate rows.
type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) List(ctx context.Context, f Filter) ([]models.Certificate, error) {
	q := r.db.WithContext(ctx)
	switch {
	case f.InternID != "":
		q = q.Where("intern_id = ?", f.InternID)
	case f.Email != "":
		q = q.Where("email = ?", f.Email)
	}

	var certs []models.Certificate
	if err := q.Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

func (r *CertificateRepository) Get(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return &cert, nil
}

func (r *CertificateRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*models.Certificate, error) {
	cert, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := patch.changes()
	if len(updates) == 0 {
		return cert, nil
	}

	if err := r.db.WithContext(ctx).Model(cert).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	return cert, nil
}

func (r *CertificateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Certificate{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete certificate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMissingPDF returns certificates that have an image but no pre-rendered
// PDF yet. The backfill job works through this set.
func (r *CertificateRepository) ListMissingPDF(ctx context.Context) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := r.db.WithContext(ctx).
		Where("pdf_url = '' AND image_url <> ''").
		Find(&certs).Error
	if err != nil {
		return nil, fmt.Errorf("list certificates missing pdf: %w", err)
	}
	return certs, nil
}

// NextInternID hands out an unused intern identifier for records created
// without one.
func (r *CertificateRepository) NextInternID(ctx context.Context) (string, error) {
	return utils.GenerateUniqueInternID(ctx, r.db)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for dialects the gorm error translator does not cover.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
