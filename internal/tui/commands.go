package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/studyhub/internal/chat"
	"github.com/csheth/studyhub/internal/library"
	"github.com/csheth/studyhub/internal/llm"
	"github.com/csheth/studyhub/internal/viewer"
)

type chatReplyMsg struct {
	turn  chat.Turn
	reply string
	err   error
}

type pageRenderedMsg struct {
	docID     string
	requested int
	page      viewer.Page
	err       error
}

type ingestResultMsg struct {
	desc      library.FileDescriptor
	subjectID string
	err       error
}

func chatReplyJob(client llm.Client, turn chat.Turn) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		reply, err := chat.Ask(ctx, client, turn)
		return chatReplyMsg{turn: turn, reply: reply, err: err}, err
	}
}

func renderPageJob(renderer PageRenderer, docID, ref string, page int) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		rendered, err := renderer.Render(ctx, ref, page)
		return pageRenderedMsg{docID: docID, requested: page, page: rendered, err: err}, err
	}
}

// ingestJob inspects the picked file off the update loop; subjectID is the
// subject that was active when the upload started.
func ingestJob(inspect InspectFunc, path, subjectID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		desc, err := inspect(path)
		return ingestResultMsg{desc: desc, subjectID: subjectID, err: err}, err
	}
}
