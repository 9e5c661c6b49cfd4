package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	jsonparser "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	"github.com/samber/oops"
)

// FileStorage implements Repository with a single JSON file.
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates a file-backed settings repository
func NewFileStorage(path string) (Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, oops.With("path", path, "context", "failed to create settings directory").Wrap(err)
		}
	}

	return &FileStorage{path: path}, nil
}

// Load returns defaults when the file does not exist. Fields missing from the
// file keep their default values.
func (s *FileStorage) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := domain.Default()
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return settings, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), jsonparser.Parser()); err != nil {
		return domain.Default(), oops.With("path", s.path, "context", "failed to parse settings file").Wrap(err)
	}

	if err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return domain.Default(), oops.With("path", s.path, "context", "failed to decode settings").Wrap(err)
	}
	if settings.BypassRoleIDs == nil {
		settings.BypassRoleIDs = []int64{}
	}

	return settings, nil
}

// Save writes to a temporary file and renames it over the target so readers
// never see a partially written record.
func (s *FileStorage) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return oops.With("path", s.path, "context", "failed to marshal settings").Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return oops.With("path", s.path, "context", "failed to create temp file").Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oops.With("path", tmp.Name(), "context", "failed to write settings").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", tmp.Name(), "context", "failed to close settings").Wrap(err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return oops.With("path", s.path, "context", "failed to replace settings file").Wrap(err)
	}

	return nil
}
