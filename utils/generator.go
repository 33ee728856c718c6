package utils

import (
	"math/rand"
	"time"

	"gorm.io/gorm"
)

const resultCodeLength = 10
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueResultCode produces the human-readable reference printed on
// result slips, unique across attempts.
func GenerateUniqueResultCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, resultCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var count int64
		err := tx.Table("attempts").Where("result_reference = ?", code).Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
}
