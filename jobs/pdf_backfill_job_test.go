package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/huctech/certificate-portal/models"
	"github.com/huctech/certificate-portal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRenderer struct {
	err error
}

func (r stubRenderer) RenderImage(ctx context.Context, imageURL string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

type stubUploader struct {
	uploads int
	err     error
}

func (u *stubUploader) UploadPDF(ctx context.Context, pdfBytes []byte, internID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploads++
	return "https://assets.example.com/" + internID + ".pdf", nil
}

func setupRepo(t *testing.T) *repository.CertificateRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Certificate{}))
	return repository.NewCertificateRepository(db)
}

func TestPDFBackfillJob_FillsMissingPDFs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	needsPDF := models.Certificate{
		InternID: "ABC123",
		Email:    "jane@example.com",
		FullName: "Jane Doe",
		ImageURL: "https://x/img.jpg",
	}
	hasPDF := models.Certificate{
		InternID: "XYZ789",
		Email:    "john@example.com",
		FullName: "John Roe",
		ImageURL: "https://x/other.jpg",
		PDFURL:   "https://assets.example.com/existing.pdf",
	}
	require.NoError(t, repo.Create(ctx, &needsPDF))
	require.NoError(t, repo.Create(ctx, &hasPDF))

	uploader := &stubUploader{}
	NewPDFBackfillJob(repo, stubRenderer{}, uploader).Run()

	assert.Equal(t, 1, uploader.uploads)

	got, err := repo.Get(ctx, needsPDF.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/ABC123.pdf", got.PDFURL)

	untouched, err := repo.Get(ctx, hasPDF.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/existing.pdf", untouched.PDFURL)
}

func TestPDFBackfillJob_SkipsOnRenderFailure(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	cert := models.Certificate{
		InternID: "ABC123",
		Email:    "jane@example.com",
		FullName: "Jane Doe",
		ImageURL: "https://x/img.jpg",
	}
	require.NoError(t, repo.Create(ctx, &cert))

	uploader := &stubUploader{}
	NewPDFBackfillJob(repo, stubRenderer{err: errors.New("chrome unavailable")}, uploader).Run()

	assert.Zero(t, uploader.uploads)

	got, err := repo.Get(ctx, cert.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PDFURL)
}

func TestPDFBackfillJob_SkipsOnUploadFailure(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	cert := models.Certificate{
		InternID: "ABC123",
		Email:    "jane@example.com",
		FullName: "Jane Doe",
		ImageURL: "https://x/img.jpg",
	}
	require.NoError(t, repo.Create(ctx, &cert))

	NewPDFBackfillJob(repo, stubRenderer{}, &stubUploader{err: errors.New("cloudinary down")}).Run()

	got, err := repo.Get(ctx, cert.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PDFURL)
}
