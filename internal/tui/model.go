package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/csheth/studyhub/internal/blob"
	"github.com/csheth/studyhub/internal/chat"
	"github.com/csheth/studyhub/internal/library"
	"github.com/csheth/studyhub/internal/llm"
	"github.com/csheth/studyhub/internal/nav"
	"github.com/csheth/studyhub/internal/viewer"
)

// PageRenderer produces the text of one page of a stored document.
type PageRenderer interface {
	Render(ctx context.Context, ref string, page int) (viewer.Page, error)
}

// InspectFunc validates a picked path and describes it for upload.
type InspectFunc func(path string) (library.FileDescriptor, error)

// Config wires runtime options into the TUI program. Nil collaborators are
// replaced with in-memory defaults.
type Config struct {
	Catalog *library.Catalog
	Chat    *chat.Session
	Refs    *blob.Registry
	Viewer  PageRenderer
	Inspect InspectFunc
	LLM     llm.Client
	Logger  *logrus.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.Refs == nil {
		config.Refs = blob.NewRegistry()
	}
	if config.Catalog == nil {
		config.Catalog = library.NewCatalog(library.Options{Refs: config.Refs, Logger: config.Logger})
	}
	if config.Viewer == nil {
		config.Viewer = viewer.New(config.Refs, config.Logger)
	}
	if config.Chat == nil {
		config.Chat = chat.NewSession(config.Logger)
	}
	if config.Inspect == nil {
		config.Inspect = viewer.Inspect
	}

	searchInput := textinput.New()
	searchInput.Placeholder = searchPlaceholder
	searchInput.CharLimit = 120
	searchInput.Width = 40

	uploadInput := textinput.New()
	uploadInput.Placeholder = uploadPlaceholder
	uploadInput.CharLimit = uploadInputLimit
	uploadInput.Width = 60

	subjectInput := textinput.New()
	subjectInput.Placeholder = subjectPlaceholder
	subjectInput.CharLimit = 60
	subjectInput.Width = 40

	chatInput := textinput.New()
	chatInput.Placeholder = chatPlaceholder
	chatInput.CharLimit = chatInputLimit
	chatInput.Width = chatPanelWidth - 6

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:         config,
		catalog:        config.Catalog,
		chat:           config.Chat,
		jobs:           newJobBus(config.Logger),
		log:            config.Logger.WithField("component", "tui"),
		layout:         newPageLayout(),
		stage:          stageDashboard,
		searchInput:    searchInput,
		uploadInput:    uploadInput,
		subjectInput:   subjectInput,
		chatInput:      chatInput,
		spinner:        spin,
		readerViewport: viewport.New(80, 20),
		chatViewport:   viewport.New(chatPanelWidth-4, 16),
		infoMessage:    "Pick a subject with ↑/↓ and Enter, or press u to upload a PDF.",
	}
	m.readerViewport.MouseWheelEnabled = true
	m.resize()
	return m
}

type model struct {
	config  Config
	catalog *library.Catalog
	chat    *chat.Session
	nav     nav.State
	jobs    *jobBus
	log     *logrus.Entry
	layout  pageLayout
	stage   stage

	searchInput    textinput.Model
	uploadInput    textinput.Model
	subjectInput   textinput.Model
	chatInput      textinput.Model
	spinner        spinner.Model
	readerViewport viewport.Model
	chatViewport   viewport.Model

	subjectCursor int
	docCursor     int
	searchQuery   string
	// returnStage is where upload and new-subject prompts go back to.
	returnStage stage

	page        viewer.Page
	pageLoading bool
	pageError   string
	fullscreen  bool

	chatOpen  bool
	ingesting bool

	confirmRemoveSubject  bool
	confirmRemoveDocument bool
	helpVisible           bool
	infoMessage           string
	errorMessage          string
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.resize()
		return m, nil
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.MouseMsg:
		if m.stage == stageReader {
			var cmd tea.Cmd
			m.readerViewport, cmd = m.readerViewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case jobSignalMsg:
		m.jobs.Track(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.jobs.Track(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case chatReplyMsg:
		if m.chat.Complete(msg.turn, msg.reply, msg.err) {
			m.refreshChat()
		}
		return m, nil
	case pageRenderedMsg:
		return m.handlePageRendered(msg)
	case ingestResultMsg:
		return m.handleIngestResult(msg)
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.pageLoading || m.ingesting || m.chat.Pending()
}

func (m *model) handlePageRendered(msg pageRenderedMsg) (tea.Model, tea.Cmd) {
	openID, ok := m.nav.OpenDocumentID()
	if !ok || openID != msg.docID {
		return m, nil
	}
	// Renders run concurrently; only the last requested page may land.
	if msg.requested != m.page.Number {
		return m, nil
	}
	m.pageLoading = false
	if msg.err != nil {
		if errors.Is(msg.err, blob.ErrDangling) || errors.Is(msg.err, blob.ErrMalformed) {
			m.pageError = "This file is no longer available in this session. Upload it again to keep reading."
		} else {
			m.pageError = fmt.Sprintf("Could not render page %d: %v", msg.requested, msg.err)
		}
		m.readerViewport.SetContent("")
		return m, nil
	}
	m.pageError = ""
	m.page = msg.page
	if msg.page.Total > 0 && msg.page.Number != msg.requested {
		m.catalog.UpdatePage(msg.docID, msg.page.Number)
	}
	m.refreshReader()
	return m, nil
}

func (m *model) handleIngestResult(msg ingestResultMsg) (tea.Model, tea.Cmd) {
	m.ingesting = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Only PDF files can be added. Press u to try another file."
		return m, nil
	}
	doc := m.catalog.AddDocument(msg.desc, msg.subjectID)
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Added %s to %s.", doc.Name, m.subjectName(doc.SubjectID))
	m.docCursor = 0
	return m, nil
}

// subjectName resolves an id for display; the sentinel and removed subjects
// read as "Other".
func (m *model) subjectName(id string) string {
	if subject, ok := m.catalog.Subject(id); ok {
		return subject.Name
	}
	return "Other"
}

func (m *model) visibleDocuments() []library.Document {
	subjectID, _ := m.nav.ActiveSubject()
	return library.Filter(m.catalog.Documents(), subjectID, m.searchQuery)
}

func (m *model) currentDocument() (library.Document, bool) {
	docs := m.visibleDocuments()
	if len(docs) == 0 {
		return library.Document{}, false
	}
	m.clampDocCursor(len(docs))
	return docs[m.docCursor], true
}

func (m *model) clampDocCursor(n int) {
	if m.docCursor >= n {
		m.docCursor = n - 1
	}
	if m.docCursor < 0 {
		m.docCursor = 0
	}
}

func (m *model) resize() {
	width := m.layout.mainWidth(m.chatOpen, m.fullscreen)
	m.readerViewport.Width = width
	m.readerViewport.Height = m.layout.readerHeight(m.fullscreen)
	m.chatViewport.Width = chatPanelWidth - 4
	m.chatViewport.Height = m.layout.chatHeight()
	m.refreshReader()
	m.refreshChat()
}
