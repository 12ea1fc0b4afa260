package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/studyhub/internal/chat"
	"github.com/csheth/studyhub/internal/icons"
	"github.com/csheth/studyhub/internal/library"
	"github.com/csheth/studyhub/internal/viewer"
)

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chatOpen {
		return m.handleChatKey(key)
	}
	if key.String() != "X" {
		m.confirmRemoveSubject = false
	}
	if key.String() != "x" {
		m.confirmRemoveDocument = false
	}
	switch m.stage {
	case stageDashboard:
		return m.handleDashboardKey(key)
	case stageLibrary:
		return m.handleLibraryKey(key)
	case stageSearch:
		return m.handleSearchKey(key)
	case stageUpload:
		return m.handleUploadKey(key)
	case stageNewSubject:
		return m.handleNewSubjectKey(key)
	case stageReader:
		return m.handleReaderKey(key)
	default:
		return m, nil
	}
}

// handleGlobalKey covers shortcuts shared by the browsing stages.
func (m *model) handleGlobalKey(key tea.KeyMsg) (tea.Cmd, bool) {
	switch key.String() {
	case "q":
		return tea.Quit, true
	case "?":
		m.helpVisible = !m.helpVisible
		return nil, true
	case "c":
		return m.openChat(), true
	case "u":
		return m.startUpload(), true
	case "n":
		return m.startNewSubject(), true
	}
	return nil, false
}

func (m *model) handleDashboardKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.handleGlobalKey(key); ok {
		return m, cmd
	}
	subjects := m.catalog.Subjects()
	switch key.String() {
	case "up", "k":
		if m.subjectCursor > 0 {
			m.subjectCursor--
		}
	case "down", "j":
		if m.subjectCursor < len(subjects)-1 {
			m.subjectCursor++
		}
	case "enter", "right", "l":
		if len(subjects) == 0 {
			return m, nil
		}
		if m.subjectCursor >= len(subjects) {
			m.subjectCursor = len(subjects) - 1
		}
		m.selectSubject(subjects[m.subjectCursor].ID)
	case "a":
		m.selectSubject("")
	case "esc":
		m.helpVisible = false
	}
	return m, nil
}

func (m *model) selectSubject(id string) {
	if id == "" {
		m.nav.ClearSubject()
	} else {
		m.nav.SelectSubject(id)
	}
	m.stage = stageLibrary
	m.docCursor = 0
	m.clearSearch()
	m.errorMessage = ""
	if id == "" {
		m.infoMessage = "Showing every document. Enter opens, / searches, Esc returns to the dashboard."
	} else {
		m.infoMessage = fmt.Sprintf("%s library. Enter opens, / searches, Esc returns to the dashboard.", m.subjectName(id))
	}
}

func (m *model) goHome() {
	m.nav.ClearSubject()
	m.stage = stageDashboard
	m.clearSearch()
	m.errorMessage = ""
	m.infoMessage = "Pick a subject with ↑/↓ and Enter, or press u to upload a PDF."
}

func (m *model) clearSearch() {
	m.searchQuery = ""
	m.searchInput.SetValue("")
	m.searchInput.Blur()
}

func (m *model) handleLibraryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.handleGlobalKey(key); ok {
		return m, cmd
	}
	docs := m.visibleDocuments()
	switch key.String() {
	case "up", "k":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "down", "j":
		if m.docCursor < len(docs)-1 {
			m.docCursor++
		}
	case "enter", "o":
		if doc, ok := m.currentDocument(); ok {
			return m, m.openDocument(doc)
		}
	case "/":
		m.stage = stageSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case "x":
		if doc, ok := m.currentDocument(); ok {
			if !m.confirmRemoveDocument {
				m.confirmRemoveDocument = true
				m.infoMessage = fmt.Sprintf("Press x again to remove %s.", doc.Name)
				return m, nil
			}
			m.confirmRemoveDocument = false
			m.catalog.RemoveDocument(doc.ID)
			m.config.Refs.Revoke(doc.FileURL)
			m.infoMessage = fmt.Sprintf("Removed %s.", doc.Name)
			m.clampDocCursor(len(m.visibleDocuments()))
		}
	case "X":
		subjectID, ok := m.nav.ActiveSubject()
		if !ok {
			return m, nil
		}
		if !m.confirmRemoveSubject {
			m.confirmRemoveSubject = true
			m.infoMessage = fmt.Sprintf("Press X again to remove %s. Its documents stay under All documents.", m.subjectName(subjectID))
			return m, nil
		}
		name := m.subjectName(subjectID)
		m.confirmRemoveSubject = false
		m.catalog.RemoveSubject(subjectID)
		m.subjectCursor = 0
		m.goHome()
		m.infoMessage = fmt.Sprintf("Removed subject %s.", name)
	case "esc", "left", "h":
		if m.searchQuery != "" {
			m.clearSearch()
			m.docCursor = 0
			return m, nil
		}
		m.goHome()
	}
	return m, nil
}

func (m *model) handleSearchKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.clearSearch()
		m.stage = stageLibrary
		m.docCursor = 0
		return m, nil
	case tea.KeyEnter:
		m.searchInput.Blur()
		m.stage = stageLibrary
		return m, nil
	case tea.KeyTab:
		if suggestion := m.searchSuggestion(); suggestion != "" {
			m.searchInput.SetValue(suggestion)
			m.searchInput.CursorEnd()
			m.searchQuery = suggestion
			m.docCursor = 0
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(key)
	m.searchQuery = m.searchInput.Value()
	m.docCursor = 0
	return m, cmd
}

func (m *model) searchSuggestion() string {
	subjectID, _ := m.nav.ActiveSubject()
	return library.Suggest(m.catalog.Documents(), subjectID, m.searchQuery)
}

func (m *model) startUpload() tea.Cmd {
	if m.ingesting {
		m.infoMessage = "Still adding the previous file…"
		return nil
	}
	m.returnStage = m.stage
	m.stage = stageUpload
	m.uploadInput.SetValue("")
	m.errorMessage = ""
	subjectID, _ := m.nav.ActiveSubject()
	m.infoMessage = fmt.Sprintf("New upload goes to %s. Enter to add, Esc to cancel.", m.uploadTargetLabel(subjectID))
	return m.uploadInput.Focus()
}

func (m *model) uploadTargetLabel(subjectID string) string {
	if subjectID == "" {
		return "Other"
	}
	return m.subjectName(subjectID)
}

func (m *model) handleUploadKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.uploadInput.Blur()
		m.stage = m.returnStage
		m.infoMessage = "Upload canceled."
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.uploadInput.Value())
		if path == "" {
			m.errorMessage = "Enter the path of a PDF file."
			return m, nil
		}
		m.uploadInput.Blur()
		m.uploadInput.SetValue("")
		m.stage = m.returnStage
		m.ingesting = true
		m.errorMessage = ""
		m.infoMessage = "Adding file…"
		subjectID, _ := m.nav.ActiveSubject()
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindIngest, ingestJob(m.config.Inspect, path, subjectID)))
	}
	var cmd tea.Cmd
	m.uploadInput, cmd = m.uploadInput.Update(key)
	return m, cmd
}

func (m *model) startNewSubject() tea.Cmd {
	m.returnStage = m.stage
	m.stage = stageNewSubject
	m.subjectInput.SetValue("")
	m.errorMessage = ""
	m.infoMessage = "Name the new subject. Enter to create, Esc to cancel."
	return m.subjectInput.Focus()
}

func (m *model) handleNewSubjectKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.subjectInput.Blur()
		m.stage = m.returnStage
		m.infoMessage = ""
		return m, nil
	case tea.KeyEnter:
		colors := icons.Colors()
		color := colors[len(m.catalog.Subjects())%len(colors)]
		subject, err := m.catalog.AddSubject(m.subjectInput.Value(), color, "Folder")
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.subjectInput.Blur()
		m.errorMessage = ""
		m.selectSubject(subject.ID)
		m.subjectCursor = len(m.catalog.Subjects()) - 1
		m.infoMessage = fmt.Sprintf("Created %s. Press u to add its first PDF.", subject.Name)
		return m, nil
	}
	var cmd tea.Cmd
	m.subjectInput, cmd = m.subjectInput.Update(key)
	return m, cmd
}

func (m *model) openDocument(doc library.Document) tea.Cmd {
	m.nav.OpenDocument(doc)
	m.stage = stageReader
	m.page = pageFor(doc)
	m.pageError = ""
	m.pageLoading = true
	m.readerViewport.SetContent("")
	m.readerViewport.GotoTop()
	m.errorMessage = ""
	if doc.Resumable() {
		m.infoMessage = fmt.Sprintf("Resume from page %d", doc.LastPage)
	} else {
		m.infoMessage = "←/→ turn pages, f toggles fullscreen, Esc closes."
	}
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindRender, renderPageJob(m.config.Viewer, doc.ID, doc.FileURL, m.page.Number)))
}

func pageFor(doc library.Document) viewer.Page {
	page := doc.LastPage
	if page < 1 {
		page = 1
	}
	return viewer.Page{Number: page, Total: doc.TotalPages}
}

func (m *model) closeDocument() {
	m.nav.CloseDocument()
	m.stage = stageLibrary
	m.pageLoading = false
	m.pageError = ""
	if m.fullscreen {
		m.fullscreen = false
		m.resize()
	}
	m.infoMessage = "Closed the viewer."
}

func (m *model) handleReaderKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.closeDocument()
		return m, nil
	case "q":
		return m, tea.Quit
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "c":
		return m, m.openChat()
	case "f":
		m.fullscreen = !m.fullscreen
		m.resize()
		return m, nil
	case "right", "l", "n", "pgdown":
		return m, m.turnPage(m.page.Number + 1)
	case "left", "h", "p", "pgup":
		return m, m.turnPage(m.page.Number - 1)
	case "g", "home":
		return m, m.turnPage(1)
	case "G", "end":
		if m.page.Total > 0 {
			return m, m.turnPage(m.page.Total)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.readerViewport, cmd = m.readerViewport.Update(key)
	return m, cmd
}

// turnPage records the new position and renders it. Positions past the last
// known page are ignored.
func (m *model) turnPage(page int) tea.Cmd {
	docID, ok := m.nav.OpenDocumentID()
	if !ok || page < 1 || page == m.page.Number {
		return nil
	}
	if m.page.Total > 0 && page > m.page.Total {
		return nil
	}
	doc, ok := m.catalog.Document(docID)
	if !ok {
		m.pageError = "This document was removed."
		return nil
	}
	m.catalog.UpdatePage(docID, page)
	m.page.Number = page
	m.pageLoading = true
	m.infoMessage = ""
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindRender, renderPageJob(m.config.Viewer, docID, doc.FileURL, page)))
}

func (m *model) openChat() tea.Cmd {
	m.chatOpen = true
	m.resize()
	return m.chatInput.Focus()
}

func (m *model) handleChatKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.chatOpen = false
		m.chatInput.Blur()
		m.resize()
		return m, nil
	case tea.KeyCtrlL:
		m.chat.Reset()
		m.chatInput.SetValue("")
		m.refreshChat()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(key)
		return m, cmd
	case tea.KeyEnter:
		turn, err := m.chat.Begin(m.chatInput.Value(), m.nav.ContextHint(m.catalog))
		if err != nil {
			if errors.Is(err, chat.ErrPending) {
				m.infoMessage = "Your study buddy is still thinking…"
			}
			return m, nil
		}
		m.chatInput.SetValue("")
		m.refreshChat()
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindChat, chatReplyJob(m.config.LLM, turn)))
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(key)
	return m, cmd
}
