package jobs

import (
	"context"
	"log"
	"time"

	"github.com/huctech/certificate-portal/repository"
	"github.com/huctech/certificate-portal/services"
)

const backfillTimeout = 5 * time.Minute

// PDFUploader is the slice of the asset service the job needs.
type PDFUploader interface {
	UploadPDF(ctx context.Context, pdfBytes []byte, internID string) (string, error)
}

// PDFBackfillJob renders and uploads PDFs for certificates that only carry an
// image, so the portal can offer a pre-rendered download.
type PDFBackfillJob struct {
	repo     *repository.CertificateRepository
	renderer services.Renderer
	assets   PDFUploader
}

func NewPDFBackfillJob(repo *repository.CertificateRepository, renderer services.Renderer, assets PDFUploader) *PDFBackfillJob {
	return &PDFBackfillJob{repo: repo, renderer: renderer, assets: assets}
}

func (j *PDFBackfillJob) Run() {
	log.Println("Running job: BackfillCertificatePDFs...")

	ctx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
	defer cancel()

	certs, err := j.repo.ListMissingPDF(ctx)
	if err != nil {
		log.Printf("Error listing certificates without PDFs: %v", err)
		return
	}
	if len(certs) == 0 {
		return
	}

	for _, cert := range certs {
		pdfBytes, err := j.renderer.RenderImage(ctx, cert.ImageURL)
		if err != nil {
			log.Printf("🔥 Failed to render PDF for intern %s: %v", cert.InternID, err)
			continue
		}

		pdfURL, err := j.assets.UploadPDF(ctx, pdfBytes, cert.InternID)
		if err != nil {
			log.Printf("🔥 Failed to upload PDF for intern %s: %v", cert.InternID, err)
			continue
		}

		if _, err := j.repo.Update(ctx, cert.ID, repository.Patch{PDFURL: &pdfURL}); err != nil {
			log.Printf("🔥 Failed to store PDF URL for intern %s: %v", cert.InternID, err)
			continue
		}

		log.Printf("✅ Backfilled PDF for intern %s.", cert.InternID)
	}
}
