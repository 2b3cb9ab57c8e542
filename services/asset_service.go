package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/huctech/certificate-portal/configs"
)

const uploadTimeout = 10 * time.Second

// AssetService stores certificate artifacts on Cloudinary and hands back
// their secure URLs.
type AssetService struct {
	cld *cloudinary.Cloudinary
}

func NewAssetService() (*AssetService, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return nil, fmt.Errorf("init cloudinary client: %w", err)
	}
	return &AssetService{cld: cld}, nil
}

func (s *AssetService) UploadImage(ctx context.Context, file *multipart.FileHeader, internID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   "certificate_images",
		PublicID: fmt.Sprintf("certificate_%s", internID),
	})
	if err != nil {
		return "", fmt.Errorf("upload certificate image: %w", err)
	}
	return uploadResult.SecureURL, nil
}

func (s *AssetService) UploadPDF(ctx context.Context, pdfBytes []byte, internID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	uploadResult, err := s.cld.Upload.Upload(ctx, bytes.NewReader(pdfBytes), uploader.UploadParams{
		Folder:       "certificate_pdfs",
		PublicID:     fmt.Sprintf("certificate_%s_%s", internID, uuid.New().String()),
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("upload certificate pdf: %w", err)
	}
	return uploadResult.SecureURL, nil
}
