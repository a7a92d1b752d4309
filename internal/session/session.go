// Package session persists the current catalog pointer and a registry of
// known catalogs in a small JSON file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultFileName   = ".deltacat_cli_config.json"
	NotConfiguredHint = "Set catalog with: deltacat catalog set or deltacat catalog init"
)

var (
	ErrNotConfigured  = errors.New("no catalog configured")
	ErrUnknownCatalog = errors.New("unknown catalog")
	ErrInvalidFile    = errors.New("invalid session file")
)

type ErrorMode string

const (
	ErrorModeStrict ErrorMode = "strict"
	ErrorModeWarn   ErrorMode = "warn"
	ErrorModeSilent ErrorMode = "silent"
)

var ErrorModes = []string{string(ErrorModeStrict), string(ErrorModeWarn), string(ErrorModeSilent)}

// Pointer identifies a catalog by name and root location.
type Pointer struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

func (p Pointer) Configured() bool {
	return p.Name != "" && p.Root != ""
}

type fileContent struct {
	Name     string             `json:"name,omitempty"`
	Root     string             `json:"root,omitempty"`
	Catalogs map[string]Pointer `json:"catalogs,omitempty"`
}

// DefaultPath returns the session file path in the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

type Store struct {
	path string
	mode ErrorMode
}

func NewStore(path string, mode ErrorMode) *Store {
	if mode == "" {
		mode = ErrorModeWarn
	}
	return &Store{path: path, mode: mode}
}

func (s *Store) Path() string {
	return s.path
}

// load returns an empty session when the file is missing.  An unreadable or
// invalid file is handled according to the error mode.
func (s *Store) load() (*fileContent, error) {
	content := &fileContent{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return content, nil
		}
		return s.handleInvalid(fmt.Errorf("%w %s: %w", ErrInvalidFile, s.path, err))
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return content, nil
	}
	if err := validate(data); err != nil {
		return s.handleInvalid(fmt.Errorf("%w %s: %w", ErrInvalidFile, s.path, err))
	}
	if err := json.Unmarshal(data, content); err != nil {
		return s.handleInvalid(fmt.Errorf("%w %s: %w", ErrInvalidFile, s.path, err))
	}
	return content, nil
}

func (s *Store) handleInvalid(err error) (*fileContent, error) {
	switch s.mode {
	case ErrorModeStrict:
		return nil, err
	case ErrorModeWarn:
		log.Warn().Err(err).Msg("ignoring session file")
	}
	return &fileContent{}, nil
}

// save writes through a temporary file in the same directory and renames it
// into place.
func (s *Store) save(content *fileContent) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	log.Debug().Str("path", s.path).Msg("saved session")
	return nil
}

// Current returns the active catalog pointer or ErrNotConfigured.
func (s *Store) Current() (Pointer, error) {
	content, err := s.load()
	if err != nil {
		return Pointer{}, err
	}
	pointer := Pointer{Name: content.Name, Root: content.Root}
	if !pointer.Configured() {
		return Pointer{}, ErrNotConfigured
	}
	return pointer, nil
}

// Set makes the catalog current and adds it to the registry.
func (s *Store) Set(name string, root string) error {
	pointer := Pointer{Name: strings.TrimSpace(name), Root: strings.TrimSpace(root)}
	if !pointer.Configured() {
		return errors.New("catalog name and root are required")
	}

	content, err := s.load()
	if err != nil {
		return err
	}
	content.Name = pointer.Name
	content.Root = pointer.Root
	if content.Catalogs == nil {
		content.Catalogs = map[string]Pointer{}
	}
	content.Catalogs[pointer.Name] = pointer
	return s.save(content)
}

// Clear drops the current pointer.  The file is removed when no registered
// catalogs remain.
func (s *Store) Clear() error {
	content, err := s.load()
	if err != nil {
		return err
	}
	if len(content.Catalogs) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}
	content.Name = ""
	content.Root = ""
	return s.save(content)
}

// List returns the registered catalogs sorted by name.
func (s *Store) List() ([]Pointer, error) {
	content, err := s.load()
	if err != nil {
		return nil, err
	}
	return sortedPointers(content.Catalogs), nil
}

func sortedPointers(catalogs map[string]Pointer) []Pointer {
	pointers := make([]Pointer, 0, len(catalogs))
	for _, pointer := range catalogs {
		pointers = append(pointers, pointer)
	}
	sort.Slice(pointers, func(i, j int) bool {
		return pointers[i].Name < pointers[j].Name
	})
	return pointers
}

// Switch makes a registered catalog current.
func (s *Store) Switch(name string) (Pointer, error) {
	content, err := s.load()
	if err != nil {
		return Pointer{}, err
	}
	pointer, ok := content.Catalogs[name]
	if !ok {
		return Pointer{}, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	content.Name = pointer.Name
	content.Root = pointer.Root
	return pointer, s.save(content)
}

// Remove unregisters a catalog.  When it was current, the first remaining
// catalog becomes current, or the pointer is cleared when none remain.  The
// returned pointer is the new current one, empty when cleared.
func (s *Store) Remove(name string) (Pointer, error) {
	content, err := s.load()
	if err != nil {
		return Pointer{}, err
	}
	if _, ok := content.Catalogs[name]; !ok {
		return Pointer{}, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	delete(content.Catalogs, name)

	if content.Name == name {
		content.Name = ""
		content.Root = ""
		if remaining := sortedPointers(content.Catalogs); len(remaining) > 0 {
			content.Name = remaining[0].Name
			content.Root = remaining[0].Root
		}
	}

	current := Pointer{Name: content.Name, Root: content.Root}
	if len(content.Catalogs) == 0 && !current.Configured() {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Pointer{}, fmt.Errorf("failed to remove session file: %w", err)
		}
		return current, nil
	}
	return current, s.save(content)
}
