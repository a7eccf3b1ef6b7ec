package runner

import (
	"os"
	"path/filepath"
	"strings"
)

var extensions = map[string]string{
	"Python": ".py",
	"Java":   ".java",
	"C++":    ".cpp",
	"C#":     ".cs",
}

// ExtensionFor maps a language to its export file extension; unknown
// languages export as plain text.
func ExtensionFor(language string) string {
	if ext, ok := extensions[language]; ok {
		return ext
	}
	return ".txt"
}

// ExportSnippet writes code verbatim to path, appending the language's
// extension when path carries none.
func ExportSnippet(path, language, code string) (string, error) {
	if filepath.Ext(path) == "" {
		path += ExtensionFor(language)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ExportName derives a filesystem-safe default file name from a snippet
// title.
func ExportName(title, language string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'а' && r <= 'я', r >= 'А' && r <= 'Я', r == 'ё', r == 'Ё':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(title))
	if name == "" {
		name = "snippet"
	}
	return name + ExtensionFor(language)
}
