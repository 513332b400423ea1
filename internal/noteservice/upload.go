package noteservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/marknote/internal/apperr"
	"github.com/starford/marknote/internal/models"
	"github.com/starford/marknote/internal/parser"
	"github.com/starford/marknote/internal/storage"
)

var (
	allowedExtensions = map[string]struct{}{"md": {}, "txt": {}, "markdown": {}}
	unsafeNameChars   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// AllowedFile reports whether name carries an accepted text extension.
func AllowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}

// SanitizeFilename reduces name to its base name. Whitespace runs become
// underscores; other characters outside [A-Za-z0-9._-] are dropped.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeNameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}

// ReadUpload validates and reads an uploaded text file. Nothing is written to disk.
func (s *Service) ReadUpload(filename string, r io.Reader) (*models.Upload, error) {
	if filename == "" {
		return nil, apperr.ErrEmptyInput
	}
	if !AllowedFile(filename) {
		return nil, fmt.Errorf("upload %q: %w", filename, apperr.ErrUnsupportedType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("upload: read: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("upload %q: content is not UTF-8: %w", filename, apperr.ErrUnsupportedType)
	}
	content := string(data)
	return &models.Upload{
		Content:   content,
		Filename:  SanitizeFilename(filename),
		WordCount: parser.CountWords(content),
	}, nil
}

// Import creates a note for every markdown file below dir and returns how many
// were created. Unreadable or empty files are skipped.
func (s *Service) Import(ctx context.Context, files storage.Files, dir string) (int, error) {
	infos, err := files.List(dir)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, fi := range infos {
		data, err := files.Read(fi.Path)
		if err != nil {
			s.logger.WarnContext(ctx, "import: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		title := parser.Parse(data).Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(fi.Path), filepath.Ext(fi.Path))
		}
		if _, err := s.CreateNote(ctx, title, string(data)); err != nil {
			s.logger.WarnContext(ctx, "import: skipped", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		created++
	}
	return created, nil
}
