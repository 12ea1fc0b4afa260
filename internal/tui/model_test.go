package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/csheth/studyhub/internal/blob"
	"github.com/csheth/studyhub/internal/chat"
	"github.com/csheth/studyhub/internal/library"
	"github.com/csheth/studyhub/internal/llm"
	"github.com/csheth/studyhub/internal/viewer"
)

type fakeLLM struct {
	reply string
	err   error
	got   *llm.Request
}

func (f fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	if f.got != nil {
		*f.got = req
	}
	return f.reply, f.err
}

func (fakeLLM) Name() string { return "fake" }

// fakeRenderer serves documents of a fixed length without touching disk.
type fakeRenderer struct {
	total int
}

func (r fakeRenderer) Render(ctx context.Context, ref string, page int) (viewer.Page, error) {
	if page < 1 {
		page = 1
	}
	if page > r.total {
		page = r.total
	}
	return viewer.Page{Number: page, Total: r.total, Text: fmt.Sprintf("page %d of %s", page, ref)}, nil
}

func fakeInspect(path string) (library.FileDescriptor, error) {
	if !strings.HasSuffix(path, ".pdf") {
		return library.FileDescriptor{}, viewer.ErrNotPDF
	}
	name := path[strings.LastIndex(path, "/")+1:]
	return library.FileDescriptor{Name: name, Path: path, TotalPages: 3}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestModel(t *testing.T) *model {
	t.Helper()
	logger := quietLogger()
	refs := blob.NewRegistry()
	catalog := library.NewCatalog(library.Options{Refs: refs, Logger: logger})
	teaModel, ok := New(Config{
		Catalog: catalog,
		Refs:    refs,
		Viewer:  fakeRenderer{total: 3},
		Inspect: fakeInspect,
		Logger:  logger,
	}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *model, keys ...tea.KeyMsg) {
	for _, key := range keys {
		m.Update(key)
	}
}

func (m *model) deliverIngest(t *testing.T, path, subjectID string) {
	t.Helper()
	msg, _ := ingestJob(m.config.Inspect, path, subjectID)(context.Background())
	m.Update(msg)
}

func (m *model) deliverRender(t *testing.T, docID, ref string, page int) {
	t.Helper()
	msg, _ := renderPageJob(m.config.Viewer, docID, ref, page)(context.Background())
	m.Update(msg)
}

func TestUploadLandsInActiveSubject(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if subjectID, ok := m.nav.ActiveSubject(); !ok || subjectID != "math" {
		t.Fatalf("expected math to be active, got %q (%v)", subjectID, ok)
	}

	press(m, runes("u"))
	if m.stage != stageUpload {
		t.Fatalf("expected upload stage, got %v", m.stage)
	}
	m.uploadInput.SetValue("/tmp/calculus.pdf")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.ingesting || m.stage != stageLibrary {
		t.Fatalf("expected ingest to start and return to library (ingesting=%v stage=%v)", m.ingesting, m.stage)
	}

	m.deliverIngest(t, "/tmp/calculus.pdf", "math")
	docs := m.catalog.Documents()
	if len(docs) != 1 {
		t.Fatalf("expected one document, got %d", len(docs))
	}
	if docs[0].SubjectID != "math" || docs[0].LastPage != 1 || docs[0].TotalPages != 3 {
		t.Fatalf("unexpected document %+v", docs[0])
	}
	if m.infoMessage != "Added calculus.pdf to Mathematics." {
		t.Fatalf("unexpected info message %q", m.infoMessage)
	}
	if m.ingesting {
		t.Fatal("ingest flag should clear")
	}
	if m.catalog.CountBySubject("math") != 1 || resourceLabel(m.catalog.CountBySubject("math")) != singleResourceLabel {
		t.Fatal("resource count should reflect the upload")
	}
}

func TestUploadFromDashboardFilesUnderOther(t *testing.T) {
	m := newTestModel(t)
	press(m, runes("u"))
	m.uploadInput.SetValue("/tmp/notes.pdf")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageDashboard {
		t.Fatalf("expected to return to the dashboard, got %v", m.stage)
	}
	m.deliverIngest(t, "/tmp/notes.pdf", "")

	docs := m.catalog.Documents()
	if len(docs) != 1 || docs[0].SubjectID != library.OtherSubjectID {
		t.Fatalf("expected a document under other, got %+v", docs)
	}
	if !strings.Contains(m.infoMessage, "Other") {
		t.Fatalf("expected Other in %q", m.infoMessage)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	m := newTestModel(t)
	m.deliverIngest(t, "/tmp/photo.png", "math")
	if len(m.catalog.Documents()) != 0 {
		t.Fatal("non-PDF upload should not create a document")
	}
	if m.errorMessage == "" {
		t.Fatal("expected an error message")
	}
}

func TestUploadEscapeCancels(t *testing.T) {
	m := newTestModel(t)
	press(m, runes("u"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageDashboard || m.ingesting {
		t.Fatalf("escape should cancel the upload (stage=%v)", m.stage)
	}
}

func TestReaderTurnsPagesAndRecordsProgress(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "calculus.pdf", Path: "/tmp/calculus.pdf", TotalPages: 3}, "math")
	m.selectSubject("math")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageReader {
		t.Fatalf("expected reader stage, got %v", m.stage)
	}
	m.deliverRender(t, doc.ID, doc.FileURL, 1)
	if m.pageLoading || m.page.Number != 1 || m.page.Total != 3 {
		t.Fatalf("unexpected page state %+v (loading=%v)", m.page, m.pageLoading)
	}

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got, _ := m.catalog.Document(doc.ID); got.LastPage != 2 {
		t.Fatalf("expected last page 2, got %d", got.LastPage)
	}

	press(m, runes("G"))
	if got, _ := m.catalog.Document(doc.ID); got.LastPage != 3 {
		t.Fatalf("expected last page 3, got %d", got.LastPage)
	}

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got, _ := m.catalog.Document(doc.ID); got.LastPage != 3 {
		t.Fatalf("paging past the end should be ignored, got %d", got.LastPage)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageLibrary {
		t.Fatalf("escape should close the reader, got %v", m.stage)
	}
	if _, open := m.nav.OpenDocumentID(); open {
		t.Fatal("document should be closed")
	}
	if !strings.Contains(m.documentRow(m.visibleDocuments()[0], false), "Continue pg 3") {
		t.Fatal("library row should offer to continue")
	}
}

func TestOpenResumableDocumentAnnouncesPage(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "history.pdf", Path: "/tmp/history.pdf", TotalPages: 9}, "history")
	m.catalog.UpdatePage(doc.ID, 4)
	doc, _ = m.catalog.Document(doc.ID)

	m.openDocument(doc)
	if m.infoMessage != "Resume from page 4" {
		t.Fatalf("unexpected info message %q", m.infoMessage)
	}
	if m.page.Number != 4 {
		t.Fatalf("expected to start on page 4, got %d", m.page.Number)
	}
}

func TestRenderClampPersistsPage(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "short.pdf", Path: "/tmp/short.pdf"}, "math")
	m.catalog.UpdatePage(doc.ID, 9)
	doc, _ = m.catalog.Document(doc.ID)

	m.openDocument(doc)
	m.deliverRender(t, doc.ID, doc.FileURL, 9)
	if m.page.Number != 3 {
		t.Fatalf("expected clamp to page 3, got %d", m.page.Number)
	}
	if got, _ := m.catalog.Document(doc.ID); got.LastPage != 3 {
		t.Fatalf("expected stored page 3, got %d", got.LastPage)
	}
}

func TestStalePageRenderIsDropped(t *testing.T) {
	m := newTestModel(t)
	first := m.catalog.AddDocument(library.FileDescriptor{Name: "a.pdf", Path: "/tmp/a.pdf"}, "math")
	second := m.catalog.AddDocument(library.FileDescriptor{Name: "b.pdf", Path: "/tmp/b.pdf"}, "math")

	m.openDocument(first)
	m.closeDocument()
	m.openDocument(second)
	m.deliverRender(t, first.ID, first.FileURL, 2)

	if !m.pageLoading {
		t.Fatal("a render for a closed document should not settle the open one")
	}
	if m.page.Text != "" {
		t.Fatalf("stale text leaked into the reader: %q", m.page.Text)
	}
}

func TestOutOfOrderRendersKeepLatestPage(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "limits.pdf", Path: "/tmp/limits.pdf", TotalPages: 3}, "math")
	m.openDocument(doc)
	m.deliverRender(t, doc.ID, doc.FileURL, 1)

	press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	m.deliverRender(t, doc.ID, doc.FileURL, 3)
	m.deliverRender(t, doc.ID, doc.FileURL, 2)

	if m.page.Number != 3 || !strings.HasPrefix(m.page.Text, "page 3 of") {
		t.Fatalf("late render replaced the current page: %+v", m.page)
	}
	if m.pageLoading {
		t.Fatal("reader should have settled on page 3")
	}
	if got, _ := m.catalog.Document(doc.ID); got.LastPage != 3 {
		t.Fatalf("expected last page 3, got %d", got.LastPage)
	}
}

func TestDanglingReferenceShowsMessage(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "old.pdf", Path: "/tmp/old.pdf"}, "math")
	m.openDocument(doc)
	m.Update(pageRenderedMsg{docID: doc.ID, requested: 1, err: fmt.Errorf("resolve: %w", blob.ErrDangling)})

	if !strings.Contains(m.pageError, "no longer available") {
		t.Fatalf("unexpected page error %q", m.pageError)
	}
	if !strings.Contains(m.View(), "no longer available") {
		t.Fatal("view should surface the dangling reference")
	}
}

func TestSearchFiltersAndSuggests(t *testing.T) {
	m := newTestModel(t)
	m.catalog.AddDocument(library.FileDescriptor{Name: "calculus.pdf", Path: "/tmp/calculus.pdf"}, "math")
	m.catalog.AddDocument(library.FileDescriptor{Name: "algebra.pdf", Path: "/tmp/algebra.pdf"}, "math")
	m.catalog.AddDocument(library.FileDescriptor{Name: "calculus-notes.pdf", Path: "/tmp/calculus-notes.pdf"}, "science")
	m.selectSubject("math")

	press(m, runes("/"))
	if m.stage != stageSearch {
		t.Fatalf("expected search stage, got %v", m.stage)
	}
	for _, r := range "calculs" {
		press(m, runes(string(r)))
	}
	if m.searchQuery != "calculs" {
		t.Fatalf("unexpected query %q", m.searchQuery)
	}
	if len(m.visibleDocuments()) != 0 {
		t.Fatal("misspelled query should match nothing")
	}
	empty := m.emptyLibraryView()
	if !strings.Contains(empty, `We couldn't find "calculs" in this subject.`) {
		t.Fatalf("unexpected empty state %q", empty)
	}
	if !strings.Contains(empty, `Did you mean "calculus"?`) {
		t.Fatalf("expected a suggestion in %q", empty)
	}

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	docs := m.visibleDocuments()
	if len(docs) != 1 || docs[0].Name != "calculus.pdf" {
		t.Fatalf("expected only the math calculus document, got %+v", docs)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageLibrary || m.searchQuery != "calculus" {
		t.Fatalf("enter should keep the filter (stage=%v query=%q)", m.stage, m.searchQuery)
	}
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searchQuery != "" || len(m.visibleDocuments()) != 2 {
		t.Fatal("escape should clear the filter")
	}
}

func TestEmptySubjectLibrary(t *testing.T) {
	m := newTestModel(t)
	m.selectSubject("art")
	if got := m.emptyLibraryView(); !strings.Contains(got, "Start building your Art resource library.") {
		t.Fatalf("unexpected empty state %q", got)
	}
}

func TestChatFallbackOnFailure(t *testing.T) {
	m := newTestModel(t)
	m.config.LLM = fakeLLM{err: errors.New("offline")}
	press(m, runes("c"))
	if !m.chatOpen {
		t.Fatal("c should open the chat panel")
	}
	m.chatInput.SetValue("What is a derivative?")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.chat.Pending() {
		t.Fatal("expected a pending reply")
	}

	m.chatInput.SetValue("Hello?")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.infoMessage, "still thinking") {
		t.Fatalf("second send should be refused, got %q", m.infoMessage)
	}
	if got := len(m.chat.Messages()); got != 2 {
		t.Fatalf("expected greeting and one question, got %d", got)
	}

	m.Update(chatReplyMsg{turn: chat.Turn{}, err: errors.New("offline")})
	messages := m.chat.Messages()
	last := messages[len(messages)-1]
	if last.Text != chat.FallbackReply || !last.Failed {
		t.Fatalf("expected fallback reply, got %+v", last)
	}
	if m.chat.Pending() {
		t.Fatal("pending flag should clear")
	}
	if !strings.Contains(m.chatViewport.View(), "Study Buddy") {
		t.Fatal("chat transcript should label assistant messages")
	}
}

func TestChatResetDropsLateReply(t *testing.T) {
	m := newTestModel(t)
	press(m, runes("c"))
	m.chatInput.SetValue("Explain limits")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, tea.KeyMsg{Type: tea.KeyCtrlL})

	m.Update(chatReplyMsg{turn: chat.Turn{}, reply: "late"})
	messages := m.chat.Messages()
	if len(messages) != 1 || messages[0].Text != chat.Greeting {
		t.Fatalf("reset should leave only the greeting, got %+v", messages)
	}
}

func TestRemoveSubjectNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "song.pdf", Path: "/tmp/song.pdf"}, "music")
	m.selectSubject("music")

	press(m, runes("X"))
	if _, ok := m.catalog.Subject("music"); !ok {
		t.Fatal("first X should only ask for confirmation")
	}
	press(m, runes("j"), runes("X"))
	if _, ok := m.catalog.Subject("music"); !ok {
		t.Fatal("another key should cancel the confirmation")
	}
	press(m, runes("X"), runes("X"))
	if _, ok := m.catalog.Subject("music"); ok {
		t.Fatal("second X should remove the subject")
	}
	if m.stage != stageDashboard {
		t.Fatalf("expected dashboard after removal, got %v", m.stage)
	}
	if _, ok := m.catalog.Document(doc.ID); !ok {
		t.Fatal("documents should survive subject removal")
	}
	if m.subjectName("music") != "Other" {
		t.Fatal("orphaned documents should read as Other")
	}
}

func TestNewSubjectFlow(t *testing.T) {
	m := newTestModel(t)
	press(m, runes("n"))
	if m.stage != stageNewSubject {
		t.Fatalf("expected new subject stage, got %v", m.stage)
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.errorMessage == "" {
		t.Fatal("blank subject name should be rejected")
	}
	m.subjectInput.SetValue("Geography")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	subjectID, ok := m.nav.ActiveSubject()
	if !ok || subjectID != "geography" {
		t.Fatalf("expected the new subject to be active, got %q", subjectID)
	}
	if m.stage != stageLibrary {
		t.Fatalf("expected library stage, got %v", m.stage)
	}
}

func TestViewShowsDashboard(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	view := m.View()
	for _, want := range []string{"StudyHub", "Mathematics", noResourcesLabel, "Recent uploads", "LLM disabled"} {
		if !strings.Contains(view, want) {
			t.Fatalf("dashboard view missing %q", want)
		}
	}
}

func TestSubjectBadgeFallsBackForUnknownIcon(t *testing.T) {
	badge := subjectBadge(library.Subject{ID: "x", Name: "X", Color: "blue", Icon: "Nope"})
	if badge == "" {
		t.Fatal("expected a fallback badge")
	}
}

func TestRemoveDocumentRevokesReference(t *testing.T) {
	m := newTestModel(t)
	doc := m.catalog.AddDocument(library.FileDescriptor{Name: "drop.pdf", Path: "/tmp/drop.pdf"}, "art")
	if !m.config.Refs.Live(doc.FileURL) {
		t.Fatal("fresh upload should hold a live reference")
	}
	m.selectSubject("art")
	press(m, runes("x"))
	if _, ok := m.catalog.Document(doc.ID); !ok {
		t.Fatal("a single x should only ask for confirmation")
	}
	if !strings.Contains(m.infoMessage, "Press x again to remove drop.pdf.") {
		t.Fatalf("unexpected prompt %q", m.infoMessage)
	}
	press(m, tea.KeyMsg{Type: tea.KeyDown}, runes("x"))
	if _, ok := m.catalog.Document(doc.ID); !ok {
		t.Fatal("any other key should cancel the pending removal")
	}
	press(m, runes("x"))
	if _, ok := m.catalog.Document(doc.ID); ok {
		t.Fatal("x should remove the selected document")
	}
	if m.config.Refs.Live(doc.FileURL) {
		t.Fatal("removed document should release its reference")
	}
	if got := m.emptyLibraryView(); !strings.Contains(got, "Start building your Art resource library.") {
		t.Fatalf("unexpected empty state %q", got)
	}
}
