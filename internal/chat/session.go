// Package chat holds the study assistant conversation: an append-only log
// that opens with a greeting and allows one request in flight at a time.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/csheth/studyhub/internal/llm"
)

const (
	Greeting      = "Hi! I'm your Lumina Study Buddy. How can I help you with your studies today?"
	FallbackReply = "Error: Unable to connect to the study assistant. Please check your connection."
	EmptyReply    = "I'm sorry, I couldn't generate a response."
)

var (
	// ErrPending rejects a send while an earlier request is unanswered.
	ErrPending = errors.New("a reply is still pending")
	// ErrEmptyPrompt rejects blank input.
	ErrEmptyPrompt = errors.New("message is empty")
	// ErrNoClient is reported when no assistant backend is configured.
	ErrNoClient = errors.New("study assistant is not configured")
)

// Message is one entry of the chat log.
type Message struct {
	Role   llm.Role
	Text   string
	At     time.Time
	Failed bool
}

// Turn captures an accepted user message and everything needed to answer it.
type Turn struct {
	Generation uint64
	Prompt     string
	Context    string
	History    []llm.Message
}

// Request converts the turn into a completion request.
func (t Turn) Request() llm.Request {
	return llm.Request{History: t.History, Prompt: t.Prompt, Context: t.Context}
}

// Session holds one chat transcript and at most one outstanding turn.
type Session struct {
	mu         sync.Mutex
	messages   []Message
	pending    bool
	generation uint64
	now        func() time.Time
	log        *logrus.Entry
}

// NewSession starts a transcript holding only the greeting.
func NewSession(logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Session{
		now: time.Now,
		log: logger.WithField("component", "chat"),
	}
	s.messages = []Message{s.greeting()}
	return s
}

func (s *Session) greeting() Message {
	return Message{Role: llm.RoleModel, Text: Greeting, At: s.now()}
}

// Messages returns a copy of the log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Begin appends the user's message and marks a reply as pending. The history
// in the returned Turn is the log as it stood before this message.
func (s *Session) Begin(text, contextHint string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyPrompt
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return Turn{}, ErrPending
	}
	history := make([]llm.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		history = append(history, llm.Message{Role: msg.Role, Text: msg.Text})
	}
	s.messages = append(s.messages, Message{Role: llm.RoleUser, Text: text, At: s.now()})
	s.pending = true
	return Turn{
		Generation: s.generation,
		Prompt:     text,
		Context:    contextHint,
		History:    history,
	}, nil
}

// Complete records the outcome of turn. Failures append FallbackReply and an
// empty reply appends EmptyReply. It reports false, changing nothing, when
// the session was reset after the turn began.
func (s *Session) Complete(turn Turn, reply string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.Generation != s.generation {
		return false
	}
	msg := Message{Role: llm.RoleModel, At: s.now()}
	switch {
	case err != nil:
		s.log.WithError(err).Error("study assistant request failed")
		msg.Text = FallbackReply
		msg.Failed = true
	case strings.TrimSpace(reply) == "":
		msg.Text = EmptyReply
	default:
		msg.Text = reply
	}
	s.messages = append(s.messages, msg)
	s.pending = false
	return true
}

// Reset discards the conversation and starts over from the greeting.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.pending = false
	s.messages = []Message{s.greeting()}
}

// Ask runs turn against client.
func Ask(ctx context.Context, client llm.Client, turn Turn) (string, error) {
	if client == nil {
		return "", ErrNoClient
	}
	return client.Complete(ctx, turn.Request())
}

// Send is the synchronous form of Begin, Ask and Complete.
func (s *Session) Send(ctx context.Context, client llm.Client, text, contextHint string) error {
	turn, err := s.Begin(text, contextHint)
	if err != nil {
		return err
	}
	reply, askErr := Ask(ctx, client, turn)
	s.Complete(turn, reply, askErr)
	return nil
}
