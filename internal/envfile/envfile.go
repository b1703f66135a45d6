// Package envfile persists build-time settings into the frontend's .env.local
// so the bundler picks them up.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"

	"shipctl/internal/console"
	"shipctl/internal/runner"
)

const (
	// FileName is the env file the bundler reads local overrides from.
	FileName = ".env.local"
	// PublicURLKey is the variable the bundler uses as the asset base URL.
	PublicURLKey = "PUBLIC_URL"
)

// Writer updates the env file inside a project directory.
type Writer struct {
	dir     string
	console *console.Console
}

// NewWriter creates a Writer for the project at dir.
func NewWriter(dir string, c *console.Console) *Writer {
	return &Writer{dir: dir, console: c}
}

// Path returns the env file location.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, FileName)
}

// ConfigurePublicURL sets PUBLIC_URL, keeping every other entry of the file.
func (w *Writer) ConfigurePublicURL(url string) error {
	path := w.Path()
	w.console.Messagef("Configuring %s in %s...", PublicURLKey, path)

	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		env = map[string]string{}
	} else if err != nil {
		w.console.Error(fmt.Sprintf("Failed to read %s", path))
		return runner.Fail(fmt.Sprintf("read %s", path), err)
	}

	env[PublicURLKey] = url
	if err := godotenv.Write(env, path); err != nil {
		w.console.Error(fmt.Sprintf("Failed to write %s", path))
		return runner.Fail(fmt.Sprintf("write %s", path), err)
	}

	w.console.Success(fmt.Sprintf(" - %s set to %s", PublicURLKey, url))
	return nil
}
