package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/huctech/certificate-portal/models"
	"gorm.io/gorm"
)

const internIDLength = 16
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateUniqueInternID(ctx context.Context, db *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, internIDLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		id := string(b)

		var cert models.Certificate
		err := db.WithContext(ctx).Where("intern_id = ?", id).First(&cert).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return id, nil
			}
			return "", err
		}
	}
}
