package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/huctech/certificate-portal/handlers"
	"github.com/huctech/certificate-portal/models"
	"github.com/huctech/certificate-portal/repository"
	"github.com/huctech/certificate-portal/routes"
	"github.com/huctech/certificate-portal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRenderer struct {
	pdf []byte
	err error
}

func (r stubRenderer) RenderImage(ctx context.Context, imageURL string) ([]byte, error) {
	return r.pdf, r.err
}

func newTestApp(t *testing.T) (*fiber.App, *repository.CertificateRepository) {
	return newTestAppWithRenderer(t, stubRenderer{pdf: []byte("%PDF-1.4 stub")})
}

func newTestAppWithRenderer(t *testing.T, renderer services.Renderer) (*fiber.App, *repository.CertificateRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Certificate{}))

	repo := repository.NewCertificateRepository(db)
	lookup := services.NewLookupService(repo)
	portal := handlers.NewPortalHandler(lookup, repo, renderer)

	app := fiber.New(fiber.Config{CaseSensitive: true, StrictRouting: true})
	routes.CertificateRoutes(app, handlers.NewCertificateHandler(repo, nil))
	routes.PortalRoutes(app, portal)
	app.Use(portal.NotFound)
	return app, repo
}

func seedCertificate(t *testing.T, repo *repository.CertificateRepository) models.Certificate {
	t.Helper()

	cert := models.Certificate{
		InternID: "ABC123",
		Email:    "a@b.com",
		FullName: "Jane Doe",
		Title:    "Intern",
		Duration: "Jun-Aug 2025",
		ImageURL: "https://x/img.jpg",
	}
	require.NoError(t, repo.Create(context.Background(), &cert))
	return cert
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeCertificate(t *testing.T, resp *http.Response) models.Certificate {
	t.Helper()

	var cert models.Certificate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cert))
	return cert
}

func TestCreateCertificate(t *testing.T) {
	app, _ := newTestApp(t)

	body := `{"internId":"ABC123","email":"a@b.com","fullName":"Jane Doe","title":"Intern","duration":"Jun-Aug 2025","imageUrl":"https://x/img.jpg"}`
	resp, err := app.Test(jsonRequest("POST", "/api/certificates", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := decodeCertificate(t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ABC123", created.InternID)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/certificates?internId=ABC123", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var certs []models.Certificate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&certs))
	require.Len(t, certs, 1)
	assert.Equal(t, "ABC123", certs[0].InternID)
}

func TestCreateCertificate_GeneratesInternID(t *testing.T) {
	app, _ := newTestApp(t)

	body := `{"email":"a@b.com","fullName":"Jane Doe"}`
	resp, err := app.Test(jsonRequest("POST", "/api/certificates", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := decodeCertificate(t, resp)
	assert.Len(t, created.InternID, 16)
	assert.Regexp(t, "^[A-Z0-9]+$", created.InternID)
}

func TestCreateCertificate_Duplicate(t *testing.T) {
	app, repo := newTestApp(t)
	seedCertificate(t, repo)

	body := `{"internId":"ABC123","email":"other@b.com","fullName":"John Roe"}`
	resp, err := app.Test(jsonRequest("POST", "/api/certificates", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateCertificate_InvalidPayload(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest("POST", "/api/certificates", `{"fullName":"Jane Doe"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/api/certificates", `not json`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListCertificates_NoMatchReturnsEmptyArray(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/certificates?email=nomatch@x.com", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestGetCertificate(t *testing.T) {
	app, repo := newTestApp(t)
	cert := seedCertificate(t, repo)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/certificates/"+cert.ID.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	got := decodeCertificate(t, resp)
	assert.Equal(t, cert.ID, got.ID)
}

func TestGetCertificate_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/certificates/6e7f2a4e-59d0-4f6b-9a3f-0b1d0a4c9e11", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetCertificate_InvalidID(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/certificates/not-a-uuid", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateCertificate_Partial(t *testing.T) {
	app, repo := newTestApp(t)
	cert := seedCertificate(t, repo)

	resp, err := app.Test(jsonRequest("PUT", "/api/certificates/"+cert.ID.String(), `{"title":"Senior Intern"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated := decodeCertificate(t, resp)
	assert.Equal(t, "Senior Intern", updated.Title)
	assert.Equal(t, "ABC123", updated.InternID)
	assert.Equal(t, "a@b.com", updated.Email)
	assert.Equal(t, "Jane Doe", updated.FullName)
	assert.Equal(t, "Jun-Aug 2025", updated.Duration)
}

func TestUpdateCertificate_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest("PUT", "/api/certificates/6e7f2a4e-59d0-4f6b-9a3f-0b1d0a4c9e11", `{"title":"Senior Intern"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteCertificate(t *testing.T) {
	app, repo := newTestApp(t)
	cert := seedCertificate(t, repo)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/certificates/"+cert.ID.String(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result["success"])

	certs, err := repo.List(context.Background(), repository.Filter{InternID: "ABC123"})
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestDeleteCertificate_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/certificates/6e7f2a4e-59d0-4f6b-9a3f-0b1d0a4c9e11", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUploadCertificateImage_AssetsNotConfigured(t *testing.T) {
	app, repo := newTestApp(t)
	cert := seedCertificate(t, repo)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/certificates/"+cert.ID.String()+"/image", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownAPIRouteReturnsJSON(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}
