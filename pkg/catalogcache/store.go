package catalogcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached collection: the full payload plus the fingerprint it
// was fetched under. Entries are replaced wholesale, never partially updated.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	Meta     Meta            `json:"meta"`
	StoredAt time.Time       `json:"storedAt"`
}

// Store is the client-side persistent cache. It must survive process
// restarts; that persistence is the whole point of the warm-start path.
type Store interface {
	// Load returns the stored entry, or nil when the collection has never
	// been cached.
	Load(collection string) (*Entry, error)
	// Save replaces the stored entry wholesale.
	Save(collection string, entry *Entry) error
}

// FileStore keeps each collection as a payload file and a sidecar meta file
// (`<collection>_cache` / `<collection>_cache_meta`) under a directory, the
// same two-key layout the web client uses in localStorage.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

type storedMeta struct {
	Meta     Meta      `json:"meta"`
	StoredAt time.Time `json:"storedAt"`
}

func (s *FileStore) Load(collection string) (*Entry, error) {
	payload, err := os.ReadFile(s.payloadPath(collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached payload: %w", err)
	}
	metaRaw, err := os.ReadFile(s.metaPath(collection))
	if err != nil {
		// A payload without its fingerprint cannot be reconciled; treat the
		// pair as absent so the caller takes the cold path.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached meta: %w", err)
	}

	var sm storedMeta
	if err := json.Unmarshal(metaRaw, &sm); err != nil {
		return nil, fmt.Errorf("decode cached meta: %w", err)
	}
	return &Entry{Payload: payload, Meta: sm.Meta, StoredAt: sm.StoredAt}, nil
}

func (s *FileStore) Save(collection string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	metaRaw, err := json.Marshal(storedMeta{Meta: entry.Meta, StoredAt: entry.StoredAt})
	if err != nil {
		return fmt.Errorf("encode cached meta: %w", err)
	}
	// Payload first: a crash in between leaves a payload with the previous
	// fingerprint, which at worst costs one redundant refetch.
	if err := os.WriteFile(s.payloadPath(collection), entry.Payload, 0o644); err != nil {
		return fmt.Errorf("write cached payload: %w", err)
	}
	if err := os.WriteFile(s.metaPath(collection), metaRaw, 0o644); err != nil {
		return fmt.Errorf("write cached meta: %w", err)
	}
	return nil
}

func (s *FileStore) payloadPath(collection string) string {
	return filepath.Join(s.dir, collection+"_cache")
}

func (s *FileStore) metaPath(collection string) string {
	return filepath.Join(s.dir, collection+"_cache_meta")
}
