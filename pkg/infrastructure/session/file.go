package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/cart/domain/model"
)

type cartsJSON struct {
	Carts map[string][]byte `json:"carts"`
}

// FileStorage keeps every cart in one JSON document on disk.
type FileStorage struct {
	mu       sync.Mutex
	filePath string
}

var _ model.CartStorage = (*FileStorage)(nil)

func NewFileStorage(filePath string) *FileStorage {
	return &FileStorage{filePath: filePath}
}

func (s *FileStorage) Load(_ context.Context, sessionID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.loadCarts()
	if err != nil {
		return nil, err
	}
	return carts[sessionID], nil
}

func (s *FileStorage) Save(_ context.Context, sessionID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.loadCarts()
	if err != nil {
		return err
	}
	carts[sessionID] = data
	return s.saveCarts(carts)
}

func (s *FileStorage) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.loadCarts()
	if err != nil {
		return err
	}
	if _, ok := carts[sessionID]; !ok {
		return nil
	}
	delete(carts, sessionID)
	return s.saveCarts(carts)
}

// loadCarts treats a missing file as an empty set of carts. An unreadable file is moved to
// <file>.corrupt so the next save does not destroy it.
func (s *FileStorage) loadCarts() (map[string][]byte, error) {
	file, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return make(map[string][]byte), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cart file")
	}

	var data cartsJSON
	if err := json.Unmarshal(file, &data); err != nil {
		aside := s.filePath + ".corrupt"
		if renameErr := os.Rename(s.filePath, aside); renameErr != nil {
			return nil, errors.Wrap(renameErr, "move unreadable cart file aside")
		}
		log.WithError(err).WithField("file", aside).Warn("cart file is unreadable, moved aside and starting with empty set")
		return make(map[string][]byte), nil
	}
	if data.Carts == nil {
		return make(map[string][]byte), nil
	}
	return data.Carts, nil
}

func (s *FileStorage) saveCarts(carts map[string][]byte) error {
	jsonData, err := json.MarshalIndent(cartsJSON{Carts: carts}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode cart file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), filepath.Base(s.filePath)+".*")
	if err != nil {
		return errors.Wrap(err, "create cart file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write cart file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "write cart file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.filePath), "replace cart file")
}
