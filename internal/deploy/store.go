package deploy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Store keeps deployment records under:
//
//	<dir>/<contract-name>/<tag>.json
//
// Writes are atomic (temp file + rename) so an interrupted deploy never
// leaves a half-written record behind.
type Store struct {
	dir string
}

// NewStore roots a store at dir.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("deployment directory is required")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) recordPath(name, tag string) string {
	return filepath.Join(s.dir, name, tag+".json")
}

// Save writes a record, overwriting any previous record for the same
// name and tag.
func (s *Store) Save(r Record) error {
	if err := r.Validate(); err != nil {
		return errors.Wrap(err, "invalid record")
	}
	dir := filepath.Join(s.dir, r.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating record directory")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling record")
	}
	tmp, err := os.CreateTemp(dir, r.Tag+".json.tmp.*")
	if err != nil {
		return errors.Wrap(err, "creating temp record")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing record")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing record")
	}
	if err := os.Rename(tmpName, s.recordPath(r.Name, r.Tag)); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "committing record")
	}
	return nil
}

// Load reads the record for one contract version.
func (s *Store) Load(name, tag string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(name, tag))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("no deployment record for %s %s", name, tag)
		}
		return nil, errors.Wrap(err, "reading record")
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "parsing record")
	}
	return &r, nil
}

// List returns all tags recorded for a contract, sorted lexicographically.
func (s *Store) List(name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "listing records")
	}
	var tags []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		tags = append(tags, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(tags)
	return tags, nil
}

// Latest loads the record with the highest tag in lexicographic order.
func (s *Store) Latest(name string) (*Record, error) {
	tags, err := s.List(name)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, errors.Errorf("no deployment records for %s", name)
	}
	return s.Load(name, tags[len(tags)-1])
}

// Remove deletes the record for one contract version.
func (s *Store) Remove(name, tag string) error {
	if err := os.Remove(s.recordPath(name, tag)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "removing record")
	}
	return nil
}
