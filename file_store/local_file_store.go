package file_store

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalFileStore writes uploads to a folder served as static files. Meant for
// development without S3.
type LocalFileStore struct {
	folderName string
	urlPrefix  string
}

func NewLocalFileStore(folderName string, urlPrefix string) (*LocalFileStore, error) {
	if err := os.MkdirAll(folderName, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalFileStore{folderName: folderName, urlPrefix: urlPrefix}, nil
}

func (s *LocalFileStore) Upload(ctx context.Context, fileName string, contentType string, body io.Reader) (string, error) {
	key := GenerateKey(fileName)
	f, err := os.Create(filepath.Join(s.folderName, key))
	if err != nil {
		return "", errors.Wrap(err, "fail to create local file")
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", errors.Wrap(err, "fail to write local file")
	}
	return s.GetUrlFromKey(key), nil
}

func (s *LocalFileStore) GetUrlFromKey(key string) string {
	return s.urlPrefix + "/" + key
}

func (s *LocalFileStore) FolderName() string {
	return s.folderName
}

func (s *LocalFileStore) CleanUp() {
	os.RemoveAll(s.folderName)
}
