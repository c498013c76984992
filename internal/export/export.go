// Package export writes a user's notes as YAML.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/gateway"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var ErrMissingPath = errors.New("export: output path required")

type document struct {
	Notes []gateway.Note `yaml:"notes"`
}

// Encode writes notes to w. A nil slice is written as an empty list.
func Encode(w io.Writer, notes []gateway.Note) error {
	if notes == nil {
		notes = []gateway.Note{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(document{Notes: notes}); err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	return encoder.Close()
}

// WriteFile writes notes to path on fs, creating parent directories.
func WriteFile(fs afero.Fs, path string, notes []gateway.Note) error {
	if path == "" {
		return ErrMissingPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create directory: %w", err)
		}
	}
	file, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("export: create file: %w", err)
	}
	if err := Encode(file, notes); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
