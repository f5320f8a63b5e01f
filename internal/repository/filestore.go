package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// FileStore keeps every user in a single pretty-printed JSON array.
// The whole file is rewritten on each Append.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore opens the store at path, creating an empty array if the file
// does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, now: time.Now}

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, fmt.Errorf("init user store: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat user store: %w", err)
	}

	return s, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) LoadAll(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Append assigns the next id and the registration time, then persists the
// user. Concurrent callers are serialised.
func (s *FileStore) Append(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return err
	}

	user.ID = len(users) + 1
	user.RegisteredAt = s.now().UTC()
	users = append(users, *user)

	if err := s.write(users); err != nil {
		return domain.ErrStorage.WithError(err)
	}
	return nil
}

// Ping confirms the backing file is still readable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := s.LoadAll(ctx)
	return err
}

func (s *FileStore) read() ([]domain.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, domain.ErrStorage.WithError(fmt.Errorf("read user store: %w", err))
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, domain.ErrCorruptStore.WithError(fmt.Errorf("%s: %w", s.path, err))
	}
	if users == nil {
		return nil, domain.ErrCorruptStore.WithError(fmt.Errorf("%s: expected a JSON array", s.path))
	}

	for i, u := range users {
		if u.ID <= 0 {
			return nil, domain.ErrCorruptStore.WithError(fmt.Errorf("%s: record %d has invalid id %d", s.path, i, u.ID))
		}
		if len(u.FaceEncoding) == 0 {
			return nil, domain.ErrCorruptStore.WithError(fmt.Errorf("%s: record %d has no face encoding", s.path, i))
		}
	}

	return users, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *FileStore) write(users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}

	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace user store: %w", err)
	}
	return nil
}
