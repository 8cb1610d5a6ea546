package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// KV is the abstract key-value backend profiles persist through. The CLI
// uses the file implementation below; tests swap in a map.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store keys: one holds the full saved profile list, one the id of the
// last-used profile.
const (
	keyProfiles = "profiles"
	keyLastUsed = "last_used"
)

// FileKV stores each key as a JSON file in a directory.
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed key-value store rooted at dir.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := os.WriteFile(f.path(key), value, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Store manages the saved profile list on top of a key-value backend.
type Store struct {
	kv KV
}

// NewStore creates a profile store.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// List returns all saved profiles.
func (s *Store) List() ([]models.BuildProfile, error) {
	data, ok, err := s.kv.Get(keyProfiles)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var profiles []models.BuildProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse saved profiles: %w", err)
	}
	return profiles, nil
}

// Save upserts a profile by id, generating an id for new documents and
// stamping the schema version and timestamps.
func (s *Store) Save(p *models.BuildProfile) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Version = CurrentVersion

	profiles, err := s.List()
	if err != nil {
		return err
	}

	replaced := false
	for i := range profiles {
		if profiles[i].ID == p.ID {
			profiles[i] = *p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, *p)
	}

	return s.writeList(profiles)
}

// Find looks a profile up by id or, failing that, by name.
func (s *Store) Find(idOrName string) (*models.BuildProfile, error) {
	profiles, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == idOrName {
			return &profiles[i], nil
		}
	}
	for i := range profiles {
		if profiles[i].Name == idOrName {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile %q not found", idOrName)
}

// Delete removes a profile by id. Deleting the last-used profile also
// clears the last-used marker.
func (s *Store) Delete(id string) error {
	profiles, err := s.List()
	if err != nil {
		return err
	}

	kept := profiles[:0]
	found := false
	for _, p := range profiles {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("profile %q not found", id)
	}

	if last, _ := s.LastUsed(); last == id {
		if err := s.kv.Delete(keyLastUsed); err != nil {
			return err
		}
	}
	return s.writeList(kept)
}

// LastUsed returns the id of the last-used profile, empty if none.
func (s *Store) LastUsed() (string, error) {
	data, ok, err := s.kv.Get(keyLastUsed)
	if err != nil || !ok {
		return "", err
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", fmt.Errorf("failed to parse last-used marker: %w", err)
	}
	return id, nil
}

// SetLastUsed records the last-used profile id.
func (s *Store) SetLastUsed(id string) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.kv.Set(keyLastUsed, data)
}

func (s *Store) writeList(profiles []models.BuildProfile) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode saved profiles: %w", err)
	}
	return s.kv.Set(keyProfiles, data)
}
