package chat

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/csheth/studyhub/internal/llm"
)

type fakeLLM struct {
	reply   string
	err     error
	lastReq llm.Request
	calls   int
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastReq = req
	return f.reply, f.err
}

func (f *fakeLLM) Name() string { return "fake" }

func newTestSession() *Session {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewSession(logger)
}

func TestNewSessionGreets(t *testing.T) {
	s := newTestSession()
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != llm.RoleModel || msgs[0].Text != Greeting {
		t.Fatalf("unexpected initial log: %+v", msgs)
	}
	if s.Pending() {
		t.Fatal("new session should not be pending")
	}
}

func TestSendSuccessAppendsTwo(t *testing.T) {
	s := newTestSession()
	client := &fakeLLM{reply: "Integrals sum things up."}

	if err := s.Send(context.Background(), client, "What is an integral?", "Subject: Mathematics, File: calc.pdf"); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Role != llm.RoleUser || msgs[1].Text != "What is an integral?" {
		t.Fatalf("unexpected user message: %+v", msgs[1])
	}
	if msgs[2].Role != llm.RoleModel || msgs[2].Text != "Integrals sum things up." {
		t.Fatalf("unexpected reply: %+v", msgs[2])
	}
	if len(client.lastReq.History) != 1 || client.lastReq.History[0].Text != Greeting {
		t.Fatalf("history should be the log before the user message: %+v", client.lastReq.History)
	}
	if client.lastReq.Context != "Subject: Mathematics, File: calc.pdf" {
		t.Fatalf("context hint not forwarded: %q", client.lastReq.Context)
	}
	if s.Pending() {
		t.Fatal("pending should clear after a reply")
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	s := newTestSession()
	client := &fakeLLM{err: errors.New("dial tcp: connection refused")}

	if err := s.Send(context.Background(), client, "hello", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[2].Text != FallbackReply || !msgs[2].Failed {
		t.Fatalf("expected fallback reply, got %+v", msgs[2])
	}
	if s.Pending() {
		t.Fatal("pending should clear after a failure")
	}
}

func TestSendWithoutClientUsesFallback(t *testing.T) {
	s := newTestSession()
	if err := s.Send(context.Background(), nil, "hello", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if last := s.Messages()[2]; last.Text != FallbackReply {
		t.Fatalf("expected fallback, got %q", last.Text)
	}
}

func TestEmptyReplyGetsApology(t *testing.T) {
	s := newTestSession()
	if err := s.Send(context.Background(), &fakeLLM{reply: "  "}, "hello", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if last := s.Messages()[2]; last.Text != EmptyReply || last.Failed {
		t.Fatalf("expected apology, got %+v", last)
	}
}

func TestBeginRejectsBlankAndOverlap(t *testing.T) {
	s := newTestSession()
	if _, err := s.Begin("   ", ""); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	turn, err := s.Begin("first", "")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := s.Begin("second", ""); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	if len(s.Messages()) != 2 {
		t.Fatal("rejected sends must not touch the log")
	}
	s.Complete(turn, "ok", nil)
	if _, err := s.Begin("second", ""); err != nil {
		t.Fatalf("send after reply should be accepted: %v", err)
	}
}

func TestCompleteAfterResetIsDiscarded(t *testing.T) {
	s := newTestSession()
	turn, err := s.Begin("question", "")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.Reset()
	if s.Complete(turn, "late answer", nil) {
		t.Fatal("stale completion should be rejected")
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Text != Greeting {
		t.Fatalf("reset log should only hold the greeting: %+v", msgs)
	}
}
