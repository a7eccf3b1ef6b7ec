package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type FSLoader struct{}

func NewLoader() *FSLoader { return &FSLoader{} }

// LoadCatalog reads catalog.yaml at root, then every referenced language
// file, in manifest order. Any malformed record fails the whole load; the
// catalog is never partially usable.
func (l *FSLoader) LoadCatalog(ctx context.Context, root string) (*Store, error) {
	manifest, err := readManifest(filepath.Join(root, "catalog.yaml"))
	if err != nil {
		return nil, err
	}

	langs := make([]LanguageFile, 0, len(manifest.Languages))
	for _, ref := range manifest.Languages {
		if ref.Enabled != nil && !*ref.Enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(root, ref.Path)
		lang, err := readLanguageFile(path)
		if err != nil {
			return nil, err
		}
		if lang.Name != ref.Name {
			return nil, fmt.Errorf("language name mismatch for %s: manifest=%s file=%s", path, ref.Name, lang.Name)
		}
		langs = append(langs, lang)
	}
	return NewStore(langs), nil
}

func readManifest(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("validate %s: %w", path, err)
	}
	return m, nil
}

func readLanguageFile(path string) (LanguageFile, error) {
	var lang LanguageFile
	b, err := os.ReadFile(path)
	if err != nil {
		return lang, err
	}
	if err := yaml.Unmarshal(b, &lang); err != nil {
		return lang, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := lang.Validate(); err != nil {
		return lang, fmt.Errorf("validate %s: %w", path, err)
	}
	lang.Path = path
	return lang, nil
}
