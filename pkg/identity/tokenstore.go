package identity

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// TokenStore persists the anonymous session token between runs.
type TokenStore interface {
	// Load returns ErrNoToken when nothing has been saved yet.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
}

// FileTokenStore keeps the token at {base}/{namespace}/session/token.
type FileTokenStore struct {
	d   *diskv.Diskv
	key string
}

func NewFileTokenStore(basePath, namespace string) *FileTokenStore {
	return &FileTokenStore{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           basePath + "/.tmp",
			AdvancedTransform: func(key string) *diskv.PathKey {
				parts := strings.Split(key, "/")
				return &diskv.PathKey{Path: parts[:len(parts)-1], FileName: parts[len(parts)-1]}
			},
			InverseTransform: func(pk *diskv.PathKey) string {
				return strings.Join(append(append([]string{}, pk.Path...), pk.FileName), "/")
			},
			FilePerm: 0o600,
		}),
		key: namespace + "/session/token",
	}
}

func (f *FileTokenStore) Load(context.Context) (string, error) {
	b, err := f.d.Read(f.key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (f *FileTokenStore) Save(_ context.Context, token string) error {
	return f.d.Write(f.key, []byte(token))
}

// MemoryTokenStore keeps the token for the life of the process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}
