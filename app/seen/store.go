package seen

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrMultilineID is returned by Persist for an identifier that could not be
// read back as a single line.
var ErrMultilineID = errors.New("identifier contains a line break")

// Store is the durable set of episode identifiers that have already been
// processed. It is loaded once per process and persisted in full after every
// decision that changes it.
type Store struct {
	path   string
	seen   map[string]struct{}
	loaded bool
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		seen: make(map[string]struct{}),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads identifiers from disk, one per line. A missing or unreadable
// file leaves the set empty. Calling Load again once loaded is a no-op.
func (s *Store) Load() {
	if s.loaded {
		return
	}
	s.loaded = true

	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{
				"path":  s.path,
				"error": err,
			}).Warn("Seen store unreadable, starting empty")
		}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		id := strings.TrimRight(scanner.Text(), "\r\n")
		if id == "" {
			continue
		}
		s.seen[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err,
		}).Warn("Seen store partially read")
	}

	logrus.WithFields(logrus.Fields{
		"path":  s.path,
		"count": len(s.seen),
	}).Debug("Seen store loaded")
}

func (s *Store) Contains(id string) bool {
	s.Load()
	_, ok := s.seen[id]
	return ok
}

func (s *Store) Mark(id string) {
	s.Load()
	s.seen[id] = struct{}{}
}

func (s *Store) Len() int {
	s.Load()
	return len(s.seen)
}

// Persist overwrites the file with the full set in sorted order. The data is
// written to a sibling temp file first and renamed into place.
func (s *Store) Persist() error {
	s.Load()

	ids := make([]string, 0, len(s.seen))
	for id := range s.seen {
		if strings.ContainsAny(id, "\r\n") {
			return fmt.Errorf("failed to persist %q: %w", id, ErrMultilineID)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for seen store: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, id := range ids {
		if _, err := w.WriteString(id + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to write seen store: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write seen store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync seen store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close seen store: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set seen store permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace seen store: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path":  s.path,
		"count": len(ids),
	}).Debug("Seen store persisted")

	return nil
}
