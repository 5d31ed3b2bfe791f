// Package loader reads text documents from the filesystem.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"lexrag/internal/domain"
)

const (
	TypeText     = "text"
	TypeMarkdown = "markdown"
)

// LoadFile reads a single file into a Document identified by its path.
func LoadFile(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.Document{
		ID:      path,
		Content: string(data),
		Metadata: map[string]string{
			domain.MetadataSource: path,
			domain.MetadataType:   typeOf(path),
		},
	}, nil
}

// LoadPaths loads every accepted file named by paths. Each entry may be a
// file, a directory (walked recursively) or a glob pattern. Files are
// accepted by .txt/.md extension or a sniffed text/* MIME type.
func LoadPaths(paths []string) ([]domain.Document, error) {
	var docs []domain.Document
	seen := make(map[string]struct{})
	add := func(path string) error {
		if _, ok := seen[path]; ok {
			return nil
		}
		seen[path] = struct{}{}
		ok, err := Accepts(path)
		if err != nil || !ok {
			return err
		}
		doc, err := LoadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	}

	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", m, err)
			}
			if !info.IsDir() {
				if err := add(m); err != nil {
					return nil, err
				}
				continue
			}
			err = filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				return add(path)
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return docs, nil
}

// Accepts reports whether path looks like a text document.
func Accepts(path string) (bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true, nil
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to detect MIME type: %w", err)
	}
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true, nil
		}
	}
	return false, nil
}

func typeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return TypeMarkdown
	default:
		return TypeText
	}
}
