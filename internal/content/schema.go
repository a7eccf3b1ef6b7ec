package content

import "fmt"

const (
	ManifestKind           = "catalog"
	LanguageKind           = "language"
	SupportedSchemaVersion = 1
)

// Manifest is the catalog.yaml at the catalog root. Languages are listed
// explicitly so their order survives YAML decoding; map keys would not.
type Manifest struct {
	Kind          string        `yaml:"kind"`
	SchemaVersion int           `yaml:"schema_version"`
	Name          string        `yaml:"name"`
	Languages     []LanguageRef `yaml:"languages"`
}

type LanguageRef struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Enabled *bool  `yaml:"enabled"`
}

// LanguageFile is one language definition file referenced by the manifest.
type LanguageFile struct {
	Kind          string  `yaml:"kind"`
	SchemaVersion int     `yaml:"schema_version"`
	Name          string  `yaml:"name"`
	Topics        []Topic `yaml:"topics"`

	Path string `yaml:"-"`
}

type Topic struct {
	Name      string     `yaml:"name"`
	Snippets  []Snippet  `yaml:"snippets"`
	Questions []Question `yaml:"questions"`
}

type Snippet struct {
	Title       string   `yaml:"title"`
	Code        string   `yaml:"code"`
	Explanation string   `yaml:"explanation"`
	UseCase     string   `yaml:"use_case"`
	Complexity  string   `yaml:"complexity"`
	Tags        []string `yaml:"tags"`
}

type Question struct {
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Correct int      `yaml:"correct"`
}

func (m Manifest) Validate() error {
	if m.Kind != ManifestKind {
		return fmt.Errorf("kind must be %q", ManifestKind)
	}
	if m.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if m.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported catalog schema_version %d (max supported %d)", m.SchemaVersion, SupportedSchemaVersion)
	}
	if len(m.Languages) == 0 {
		return fmt.Errorf("languages must contain at least one entry")
	}
	seen := map[string]struct{}{}
	for _, ref := range m.Languages {
		if ref.Name == "" {
			return fmt.Errorf("languages[].name is required")
		}
		if ref.Path == "" {
			return fmt.Errorf("languages[].path is required for %q", ref.Name)
		}
		if _, ok := seen[ref.Name]; ok {
			return fmt.Errorf("duplicate language %q in catalog.yaml", ref.Name)
		}
		seen[ref.Name] = struct{}{}
	}
	return nil
}

func (f LanguageFile) Validate() error {
	if f.Kind != LanguageKind {
		return fmt.Errorf("kind must be %q", LanguageKind)
	}
	if f.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if f.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported language schema_version %d (max supported %d)", f.SchemaVersion, SupportedSchemaVersion)
	}
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	seen := map[string]struct{}{}
	for ti, t := range f.Topics {
		if t.Name == "" {
			return fmt.Errorf("topics[%d].name is required", ti)
		}
		if _, ok := seen[t.Name]; ok {
			return fmt.Errorf("duplicate topic %q", t.Name)
		}
		seen[t.Name] = struct{}{}
		if len(t.Snippets) == 0 && len(t.Questions) == 0 {
			return fmt.Errorf("topic %q has neither snippets nor questions", t.Name)
		}
		titles := map[string]struct{}{}
		for si, s := range t.Snippets {
			if err := s.validate(); err != nil {
				return fmt.Errorf("topic %q snippet %d: %w", t.Name, si, err)
			}
			if _, ok := titles[s.Title]; ok {
				return fmt.Errorf("topic %q has duplicate snippet title %q", t.Name, s.Title)
			}
			titles[s.Title] = struct{}{}
		}
		for qi, q := range t.Questions {
			if err := q.validate(); err != nil {
				return fmt.Errorf("topic %q question %d: %w", t.Name, qi, err)
			}
		}
	}
	return nil
}

func (s Snippet) validate() error {
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	if s.Code == "" {
		return fmt.Errorf("code is required")
	}
	return nil
}

func (q Question) validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("options must contain at least 2 entries")
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range for %d options", q.Correct, len(q.Options))
	}
	return nil
}
