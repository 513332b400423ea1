package editor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/marknote/internal/storage"
)

// DefaultExtension is appended to save paths that carry no extension.
const DefaultExtension = ".md"

// normalizePath resolves path to an absolute path and adds DefaultExtension
// when the file name has none.
func normalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("editor: empty path")
	}
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("editor: resolve %s: %w", path, err)
	}
	return abs, nil
}

// fileStore opens an atomic file store rooted at the directory of abs,
// creating the directory first.
func fileStore(abs string) (*storage.FS, error) {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("editor: mkdir %s: %w", dir, err)
	}
	return storage.NewFS(dir)
}

// saveFile atomically writes content to abs.
func saveFile(abs, content string) error {
	fs, err := fileStore(abs)
	if err != nil {
		return err
	}
	return fs.Write(filepath.Base(abs), []byte(content))
}

// loadFile reads the file at abs.
func loadFile(abs string) (string, error) {
	fs, err := storage.NewFS(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	data, err := fs.Read(filepath.Base(abs))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
