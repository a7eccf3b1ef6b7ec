package quiz

import (
	"errors"
	"math/rand"

	"codeaid/internal/content"

	"github.com/google/uuid"
)

const maxQuestions = 3

var (
	ErrNoQuestions   = errors.New("no questions available for this topic")
	ErrInvalidOption = errors.New("selected option out of range")
	ErrFinished      = errors.New("session already finished")
)

// Tier classifies a finished warmup for result messaging.
type Tier string

const (
	TierPerfect Tier = "perfect"
	TierGood    Tier = "good"
	TierRetry   Tier = "retry"
)

type Feedback struct {
	Correct      bool
	CorrectIndex int
}

type Result struct {
	Score int
	Total int
	Tier  Tier
}

// Session is one warmup over a sampled subset of a topic's questions. It is
// ephemeral: finishing or resetting discards it, nothing about the walk is
// persisted here.
type Session struct {
	ID       string
	Language string
	Topic    string

	questions []content.Question
	current   int
	score     int
	answered  []bool
	finished  bool
}

// Start samples min(3, n) questions uniformly without replacement. An empty
// pool means the warmup cannot begin.
func Start(language, topic string, pool []content.Question, rng *rand.Rand) (*Session, error) {
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	n := len(pool)
	count := n
	if count > maxQuestions {
		count = maxQuestions
	}
	picked := make([]content.Question, 0, count)
	for _, idx := range rng.Perm(n)[:count] {
		picked = append(picked, pool[idx])
	}
	return &Session{
		ID:        uuid.NewString(),
		Language:  language,
		Topic:     topic,
		questions: picked,
		answered:  make([]bool, count),
	}, nil
}

func (s *Session) Total() int        { return len(s.questions) }
func (s *Session) Score() int        { return s.score }
func (s *Session) CurrentIndex() int { return s.current }

func (s *Session) Current() content.Question {
	return s.questions[s.current]
}

// Answered reports whether the current question has been answered.
func (s *Session) Answered() bool {
	return s.answered[s.current]
}

// Answer evaluates the selected option against the current question. Feedback
// always carries the correct index so the caller can render it. A question
// locks after its first answer: later answers still get feedback but the
// score never changes.
func (s *Session) Answer(option int) (Feedback, error) {
	if s.finished {
		return Feedback{}, ErrFinished
	}
	q := s.questions[s.current]
	if option < 0 || option >= len(q.Options) {
		return Feedback{}, ErrInvalidOption
	}
	correct := option == q.Correct
	if !s.answered[s.current] {
		s.answered[s.current] = true
		if correct {
			s.score++
		}
	}
	return Feedback{Correct: correct, CorrectIndex: q.Correct}, nil
}

// Next advances the pointer; it reports false at the last question.
func (s *Session) Next() bool {
	if s.finished || s.current >= len(s.questions)-1 {
		return false
	}
	s.current++
	return true
}

// Prev moves the pointer back; it reports false at the first question.
func (s *Session) Prev() bool {
	if s.finished || s.current <= 0 {
		return false
	}
	s.current--
	return true
}

// Finish closes the session from any position and returns the final result.
func (s *Session) Finish() Result {
	s.finished = true
	return Result{Score: s.score, Total: len(s.questions), Tier: tierFor(s.score, len(s.questions))}
}

func tierFor(score, total int) Tier {
	if total == 0 {
		return TierRetry
	}
	switch {
	case score == total:
		return TierPerfect
	case float64(score) >= 0.7*float64(total):
		return TierGood
	default:
		return TierRetry
	}
}
