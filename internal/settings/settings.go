package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"video-grid/internal/filesystem"
	"video-grid/internal/logging"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Settings are the grid preferences.
type Settings struct {
	DefaultRows  int  `json:"defaultRows" validate:"min=1,max=8"`
	DefaultCols  int  `json:"defaultCols" validate:"min=1,max=8"`
	DefaultMuted bool `json:"defaultMuted"`
	SingleAudio  bool `json:"singleAudio"`
}

// Defaults returns the settings used when nothing has been saved.
func Defaults() Settings {
	return Settings{
		DefaultRows:  2,
		DefaultCols:  2,
		DefaultMuted: true,
		SingleAudio:  true,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the settings. Errors wrap ErrInvalid.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// Decode reads one settings object from JSON. Fields missing from the input
// keep their default values; unknown fields, trailing data and a null body
// are rejected. The result is validated.
func Decode(r io.Reader) (Settings, error) {
	return decode(r, true)
}

// decode parses a single JSON object. strict rejects unknown fields; files
// written by older versions may carry keys this version no longer has.
func decode(r io.Reader, strict bool) (Settings, error) {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Defaults(), fmt.Errorf("%w: unexpected data after settings object", ErrInvalid)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Defaults(), fmt.Errorf("%w: settings must be a JSON object", ErrInvalid)
	}

	s := Defaults()
	inner := json.NewDecoder(bytes.NewReader(raw))
	if strict {
		inner.DisallowUnknownFields()
	}
	if err := inner.Decode(&s); err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return Defaults(), err
	}
	return s, nil
}

// Store reads and writes one settings file.
type Store struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewStore creates a Store for path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved settings. A missing file yields the defaults and no
// error; an unreadable or corrupt file yields the defaults and the error.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := filesystem.OpenWithRetry(s.fs, s.path, filesystem.DefaultRetryConfig())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("open settings %s: %w", s.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("Failed to close %s: %v", s.path, cerr)
		}
	}()

	loaded, err := decode(f, false)
	if err != nil {
		return Defaults(), fmt.Errorf("read settings %s: %w", s.path, err)
	}
	return loaded, nil
}

// Save validates and writes the settings, replacing the file atomically.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := filesystem.WriteFileAtomic(s.fs, s.path, data, 0o644); err != nil {
		return err
	}
	logging.Info("Settings saved to %s", s.path)
	return nil
}
