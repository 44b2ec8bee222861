package file_store

import (
	"context"
	"io"
	"io/ioutil"
	"sync"
)

// FakeFileStore keeps uploads in memory.
type FakeFileStore struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewFakeFileStore() *FakeFileStore {
	return &FakeFileStore{Files: make(map[string][]byte)}
}

func (s *FakeFileStore) Upload(ctx context.Context, fileName string, contentType string, body io.Reader) (string, error) {
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := GenerateKey(fileName)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[key] = data
	return s.GetUrlFromKey(key), nil
}

func (s *FakeFileStore) GetUrlFromKey(key string) string {
	return "https://fake-store/" + key
}
