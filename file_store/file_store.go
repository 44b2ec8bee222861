package file_store

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// CustomizeFileNameFuncType turns an uploaded file name into a store key.
type CustomizeFileNameFuncType func(fileName string) string

// ObjectStore keeps user uploads and hands back a public url for each.
type ObjectStore interface {
	Upload(ctx context.Context, fileName string, contentType string, body io.Reader) (url string, err error)
	GetUrlFromKey(key string) string
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateKey builds a collision free key from the original file name, e.g.
// "My Photo (1).JPG" becomes "<uuid>-my-photo-1.jpg".
func GenerateKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	ext = "." + nonWord.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "." {
		ext = ""
	}
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	base = strings.Trim(nonWord.ReplaceAllString(base, "-"), "-")

	key := uuid.New().String()
	if base != "" && base != "." {
		key = key + "-" + base
	}
	return key + ext
}
