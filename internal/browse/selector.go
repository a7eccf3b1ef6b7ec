package browse

import (
	"errors"

	"codeaid/internal/content"
)

// ErrInvalidSelection is returned when a topic does not belong to the
// currently selected language. The caller decides whether to surface it.
var ErrInvalidSelection = errors.New("invalid selection")

// Selector tracks the active (language, topic) pair. Selecting a language
// always leaves the pair consistent: the topic is either valid for that
// language or empty.
type Selector struct {
	store *content.Store

	language string
	topic    string
}

func NewSelector(store *content.Store) *Selector {
	return &Selector{store: store}
}

func (s *Selector) CurrentLanguage() string { return s.language }
func (s *Selector) CurrentTopic() string    { return s.topic }

func (s *Selector) SetLanguage(language string) {
	s.language = language
	topics := s.store.Topics(language)
	if len(topics) > 0 {
		s.topic = topics[0]
	} else {
		s.topic = ""
	}
}

func (s *Selector) SetTopic(topic string) error {
	for _, t := range s.store.Topics(s.language) {
		if t == topic {
			s.topic = topic
			return nil
		}
	}
	return ErrInvalidSelection
}

func (s *Selector) Topics() []string {
	return s.store.Topics(s.language)
}

func (s *Selector) ActiveSnippets() []content.Snippet {
	return s.store.Snippets(s.language, s.topic)
}

func (s *Selector) ActiveQuestions() []content.Question {
	return s.store.Questions(s.language, s.topic)
}
