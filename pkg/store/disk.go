package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/journal/pkg/entry"
)

const (
	usersDir        = "users"
	entriesDocument = "entries"
	tempDir         = ".tmp"
)

// document is the on-disk shape of one user's collection.
type document struct {
	Entries []*entry.Entry `json:"entries"`
}

// Disk stores each user's collection as one JSON document under
// {namespace}/users/{uid}/entries. Writes go through a temp file and a rename
// so a batch lands all at once or not at all.
type Disk struct {
	opts     options
	d        *diskv.Diskv
	basePath string
	hub      *hub

	mu     sync.Mutex
	closed bool
	stop   context.CancelFunc
	done   chan struct{}
}

var _ Adapter = (*Disk)(nil)

// NewDisk opens a disk store rooted at basePath and, unless disabled, starts
// watching it for edits made by other processes.
func NewDisk(basePath string, opts ...Option) (*Disk, error) {
	if basePath == "" {
		return nil, errors.New("store: disk base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	o := newOptions(opts)
	if err := validateNamespace(o.namespace); err != nil {
		return nil, err
	}
	s := &Disk{
		opts:     o,
		basePath: basePath,
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Join(basePath, tempDir),
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// No cache: other processes write these files too.
			CacheSizeMax: 0,
		}),
	}
	s.hub = newHub(s.List, o.log)
	if o.watch {
		ctx, cancel := context.WithCancel(context.Background())
		done, err := s.watch(ctx)
		if err != nil {
			cancel()
			return nil, err
		}
		s.stop = cancel
		s.done = done
	}
	return s, nil
}

func validateNamespace(ns string) error {
	if ns == "" || ns == "." || ns == ".." || strings.ContainsAny(ns, `/\`) {
		return fmt.Errorf("store: invalid namespace %q", ns)
	}
	return nil
}

func (s *Disk) key(userID string) string {
	return strings.Join([]string{s.opts.namespace, usersDir, userID, entriesDocument}, "/")
}

func (s *Disk) read(userID string) (collection, error) {
	data, err := s.d.Read(s.key(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return collection{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", userID, err)
	}
	if len(data) == 0 {
		return collection{}, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", userID, err)
	}
	out := make(collection, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e != nil && e.ID != "" {
			out = append(out, e)
		}
	}
	sortCreated(out)
	return out, nil
}

func (s *Disk) write(userID string, c collection) error {
	data, err := json.MarshalIndent(document{Entries: c}, "", "  ")
	if err != nil {
		return err
	}
	if err := s.d.Write(s.key(userID), data); err != nil {
		return fmt.Errorf("store: write %s: %w", userID, err)
	}
	return nil
}

func (s *Disk) Create(ctx context.Context, userID string, e *entry.Entry) (string, error) {
	ids, err := s.Batch(ctx, userID, []Op{CreateOp(e)})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (s *Disk) Patch(ctx context.Context, userID, id string, p entry.Patch) error {
	_, err := s.Batch(ctx, userID, []Op{PatchOp(id, p)})
	return err
}

func (s *Disk) Remove(ctx context.Context, userID, id string) error {
	_, err := s.Batch(ctx, userID, []Op{DeleteOp(id)})
	return err
}

func (s *Disk) Batch(ctx context.Context, userID string, ops []Op) ([]string, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	current, err := s.read(userID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next, ids, err := current.apply(ops, s.opts)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.write(userID, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.hub.publish(ctx, userID)
	return ids, nil
}

func (s *Disk) List(ctx context.Context, userID string, f Filter) ([]*entry.Entry, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	c, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	return c.filter(f), nil
}

func (s *Disk) Subscribe(ctx context.Context, userID string, f Filter, onChange func([]*entry.Entry)) (Unsubscribe, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	return s.hub.subscribe(ctx, userID, f, onChange)
}

func (s *Disk) Observe(userID string, o RoundObserver) Unsubscribe {
	return s.hub.observe(userID, o)
}

// Users lists the user ids that have a collection in this namespace.
func (s *Disk) Users(ctx context.Context) []string {
	prefix := s.opts.namespace + "/" + usersDir + "/"
	var out []string
	for key := range s.d.KeysPrefix(prefix, ctx.Done()) {
		rest := strings.TrimPrefix(key, prefix)
		if uid, doc, ok := strings.Cut(rest, "/"); ok && doc == entriesDocument {
			out = append(out, uid)
		}
	}
	return out
}

func (s *Disk) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.hub.close()
	if s.stop != nil {
		s.stop()
		<-s.done
	}
	return nil
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}
