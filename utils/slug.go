package utils

import (
	"crypto/rand"
	"fmt"

	"gorm.io/gorm"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// SlugLength is the size of a listing's public slug.
const SlugLength = 10

// GenerateSlug returns a URL-safe random identifier of the given length.
func GenerateSlug(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = slugAlphabet[int(v)%len(slugAlphabet)]
	}
	return string(out), nil
}

// UniqueSlug generates a slug and re-checks it against the given table/column
// before accepting it, retrying on the (unlikely) collision.
func UniqueSlug(db *gorm.DB, model interface{}, column string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		slug, err := GenerateSlug(SlugLength)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(model).Where(column+" = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique slug")
}
