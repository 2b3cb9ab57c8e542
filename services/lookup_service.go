package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huctech/certificate-portal/models"
	"github.com/huctech/certificate-portal/repository"
)

// ErrNoMatch is returned when an identifier resolves to no certificate.
var ErrNoMatch = errors.New("no certificate found")

// CertificateLister is the slice of the repository the resolver needs.
type CertificateLister interface {
	List(ctx context.Context, f repository.Filter) ([]models.Certificate, error)
}

type LookupService struct {
	certs CertificateLister
}

func NewLookupService(certs CertificateLister) *LookupService {
	return &LookupService{certs: certs}
}

// Resolve maps a free-text identifier to at most one certificate. Input
// containing "@" is treated as an email, anything else as an intern ID, and
// the first listed record must carry that identifier exactly (case-sensitive,
// surrounding whitespace trimmed).
func (s *LookupService) Resolve(ctx context.Context, input string) (*models.Certificate, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrNoMatch
	}

	var filter repository.Filter
	if strings.Contains(input, "@") {
		filter.Email = input
	} else {
		filter.InternID = input
	}

	certs, err := s.certs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, ErrNoMatch
	}

	cert := certs[0]
	if filter.Email != "" && cert.Email != input {
		return nil, ErrNoMatch
	}
	if filter.InternID != "" && cert.InternID != input {
		return nil, ErrNoMatch
	}
	return &cert, nil
}
