package content

// Store is the read-only in-memory catalog. Lookups on unknown keys return
// nil; absence is a displayable state for callers, not an error.
type Store struct {
	order []string
	langs map[string]langEntry
}

type langEntry struct {
	topicOrder []string
	topics     map[string]Topic
}

func NewStore(langs []LanguageFile) *Store {
	s := &Store{langs: map[string]langEntry{}}
	for _, lf := range langs {
		entry := langEntry{topics: map[string]Topic{}}
		for _, t := range lf.Topics {
			entry.topicOrder = append(entry.topicOrder, t.Name)
			entry.topics[t.Name] = t
		}
		s.order = append(s.order, lf.Name)
		s.langs[lf.Name] = entry
	}
	return s
}

func (s *Store) Languages() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) Topics(language string) []string {
	entry, ok := s.langs[language]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.topicOrder...)
}

func (s *Store) Snippets(language, topic string) []Snippet {
	entry, ok := s.langs[language]
	if !ok {
		return nil
	}
	return entry.topics[topic].Snippets
}

func (s *Store) Questions(language, topic string) []Question {
	entry, ok := s.langs[language]
	if !ok {
		return nil
	}
	return entry.topics[topic].Questions
}

// Snippet resolves one snippet by position. The bool reports whether the
// triple still points at an existing record; stale favorites and history
// entries rely on this to be skippable.
func (s *Store) Snippet(language, topic string, index int) (Snippet, bool) {
	snippets := s.Snippets(language, topic)
	if index < 0 || index >= len(snippets) {
		return Snippet{}, false
	}
	return snippets[index], true
}
