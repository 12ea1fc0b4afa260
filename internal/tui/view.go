package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/studyhub/internal/icons"
	"github.com/csheth/studyhub/internal/library"
	"github.com/csheth/studyhub/internal/llm"
)

func (m *model) View() string {
	var center string
	switch m.stage {
	case stageDashboard:
		center = m.viewDashboard()
	case stageLibrary, stageSearch:
		center = m.viewLibrary()
	case stageUpload:
		center = m.viewUpload()
	case stageNewSubject:
		center = m.viewNewSubject()
	case stageReader:
		center = m.viewReader()
	}
	center = mainColumnStyle.Width(m.layout.mainWidth(m.chatOpen, m.fullscreen)).Render(center)

	columns := []string{}
	if !(m.stage == stageReader && m.fullscreen) {
		columns = append(columns, m.sidebarView())
	}
	columns = append(columns, center)
	if m.chatOpen {
		columns = append(columns, m.chatPanelView())
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	parts := []string{}
	if !(m.stage == stageReader && m.fullscreen) {
		parts = append(parts, m.heroView())
	}
	parts = append(parts, body)
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.ingesting {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView(), m.helpView())
	}
	parts = append(parts, m.statusBarView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := lipgloss.JoinVertical(
		lipgloss.Left,
		heroTitleStyle.Render("StudyHub"),
		taglineStyle.Render(heroTagline),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, renderLogo(), heroSummaryStyle.Render(title))
}

// subjectBadge renders a subject glyph. Subjects restored from storage can
// carry icon keys this build does not know; those fall back to a folder.
func subjectBadge(subject library.Subject) string {
	if _, ok := icons.Lookup(subject.Icon); !ok {
		return icons.Badge("Folder", subject.Color)
	}
	return icons.Badge(subject.Icon, subject.Color)
}

func resourceLabel(count int) string {
	switch count {
	case 0:
		return noResourcesLabel
	case 1:
		return singleResourceLabel
	default:
		return fmt.Sprintf(resourceCountTemplate, count)
	}
}

func (m *model) sidebarView() string {
	active, hasActive := m.nav.ActiveSubject()
	var b contentBuilder
	home := icons.Glyph("Home") + " Dashboard"
	if !hasActive && m.stage == stageDashboard {
		home = currentLineStyle.Render(home)
	}
	b.WriteString(home)
	b.WriteRune('\n')
	b.WriteRune('\n')
	b.WriteString(sectionHeaderStyle.Render("Subjects"))
	b.WriteRune('\n')
	for _, subject := range m.catalog.Subjects() {
		line := fmt.Sprintf("%s %s", subjectBadge(subject), subject.Name)
		if hasActive && subject.ID == active {
			line = lipgloss.JoinHorizontal(lipgloss.Top, "▸ ", line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteRune('\n')
	}
	if others := m.catalog.CountBySubject(library.OtherSubjectID); others > 0 {
		b.WriteString(helperStyle.Render(fmt.Sprintf("  %s Other (%d)", icons.Glyph("Folder"), others)))
		b.WriteRune('\n')
	}
	return sidebarStyle.Width(sidebarWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *model) viewDashboard() string {
	var b contentBuilder
	b.WriteString(sectionHeaderStyle.Render("Your Subjects"))
	b.WriteRune('\n')
	for idx, subject := range m.catalog.Subjects() {
		label := fmt.Sprintf("%s %s", subjectBadge(subject), subject.Name)
		count := helperStyle.Render(resourceLabel(m.catalog.CountBySubject(subject.ID)))
		if idx == m.subjectCursor {
			b.WriteString(currentLineStyle.Render("▸ "+subject.Name) + "  " + count)
		} else {
			b.WriteString("  " + label + "  " + count)
		}
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
	b.WriteString(sectionHeaderStyle.Render("Recent uploads"))
	b.WriteRune('\n')
	docs := m.catalog.Documents()
	if len(docs) == 0 {
		b.WriteString(helperStyle.Render("Nothing here yet. Press u to upload your first PDF."))
	}
	if len(docs) > recentLimit {
		docs = docs[:recentLimit]
	}
	for _, doc := range docs {
		b.WriteString(fmt.Sprintf("%s %s", icons.Glyph("Document"), doc.Name))
		b.WriteString(helperStyle.Render(fmt.Sprintf("  %s • %s", m.subjectName(doc.SubjectID), doc.Uploaded().Format("Jan 2"))))
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) libraryTitle() string {
	subjectID, ok := m.nav.ActiveSubject()
	if !ok {
		return "All documents"
	}
	if subject, found := m.catalog.Subject(subjectID); found {
		return fmt.Sprintf("%s %s", subjectBadge(subject), subject.Name)
	}
	return m.subjectName(subjectID)
}

func (m *model) viewLibrary() string {
	docs := m.visibleDocuments()
	m.clampDocCursor(len(docs))

	var b contentBuilder
	b.WriteString(sectionHeaderStyle.Render(m.libraryTitle()))
	b.WriteRune('\n')
	if m.stage == stageSearch {
		b.WriteString(m.searchInput.View())
		b.WriteRune('\n')
		b.WriteString(helperStyle.Render("Enter keeps the filter, Tab takes the suggestion, Esc clears."))
		b.WriteRune('\n')
	} else if m.searchQuery != "" {
		b.WriteString(helperStyle.Render(fmt.Sprintf("Filtered by %q. Esc clears.", m.searchQuery)))
		b.WriteRune('\n')
	}
	b.WriteRune('\n')

	if len(docs) == 0 {
		b.WriteString(m.emptyLibraryView())
		return b.String()
	}

	cursorLine := 0
	for idx, doc := range docs {
		if idx == m.docCursor {
			cursorLine = b.Line()
		}
		b.WriteString(m.documentRow(doc, idx == m.docCursor))
		b.WriteRune('\n')
	}
	return scrollToLine(strings.TrimRight(b.String(), "\n"), cursorLine, m.layout.readerHeight(false))
}

func (m *model) documentRow(doc library.Document, selected bool) string {
	name := fmt.Sprintf("%s %s", icons.Glyph("Document"), doc.Name)
	if selected {
		name = currentLineStyle.Render("▸ " + doc.Name)
	} else {
		name = "  " + name
	}
	meta := []string{doc.Uploaded().Format("Jan 2")}
	if doc.TotalPages > 0 {
		meta = append(meta, fmt.Sprintf("%d pages", doc.TotalPages))
	}
	if doc.Resumable() {
		meta = append(meta, resumeStyle.Render(fmt.Sprintf("Continue pg %d", doc.LastPage)))
	}
	if _, ok := m.nav.ActiveSubject(); !ok {
		meta = append(meta, m.subjectName(doc.SubjectID))
	}
	return name + helperStyle.Render("  "+strings.Join(meta, " • "))
}

func (m *model) emptyLibraryView() string {
	if m.searchQuery != "" {
		lines := []string{helperStyle.Render(fmt.Sprintf("We couldn't find %q in this subject.", m.searchQuery))}
		if suggestion := m.searchSuggestion(); suggestion != "" {
			lines = append(lines, helperStyle.Render(fmt.Sprintf("Did you mean %q? Press / then Tab.", suggestion)))
		}
		return strings.Join(lines, "\n")
	}
	subjectID, ok := m.nav.ActiveSubject()
	if !ok {
		return helperStyle.Render("No documents yet. Press u to upload a PDF.")
	}
	return helperStyle.Render(fmt.Sprintf("Start building your %s resource library. Press u to upload a PDF.", m.subjectName(subjectID)))
}

// scrollToLine keeps the line at index target inside a window of height lines.
func scrollToLine(content string, target, height int) string {
	lines := strings.Split(content, "\n")
	if height <= 0 || len(lines) <= height {
		return content
	}
	start := target - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return strings.Join(lines[start:start+height], "\n")
}

func (m *model) viewUpload() string {
	subjectID, _ := m.nav.ActiveSubject()
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Upload a PDF"),
		m.uploadInput.View(),
		helperStyle.Render(fmt.Sprintf("The file is added to %s. Only PDF files are accepted.", m.uploadTargetLabel(subjectID))),
	})
}

func (m *model) viewNewSubject() string {
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("New subject"),
		m.subjectInput.View(),
		helperStyle.Render("Enter to create, Esc to cancel."),
	})
}

func (m *model) viewReader() string {
	docID, _ := m.nav.OpenDocumentID()
	doc, ok := m.catalog.Document(docID)
	if !ok {
		return errorStyle.Render("This document was removed.")
	}
	toolbar := []string{
		readerTitleStyle.Render(doc.Name),
		helperStyle.Render(m.pageLabel()),
	}
	if m.pageLoading {
		toolbar = append(toolbar, m.spinner.View())
	}
	header := strings.Join(toolbar, "  ")
	if m.pageError != "" {
		return joinNonEmpty([]string{header, errorStyle.Render(wordwrap.String(m.pageError, m.readerViewport.Width))})
	}
	return header + "\n" + m.readerViewport.View()
}

func (m *model) pageLabel() string {
	if m.page.Total > 0 {
		return fmt.Sprintf("Page %d of %d", m.page.Number, m.page.Total)
	}
	return fmt.Sprintf("Page %d", m.page.Number)
}

func (m *model) refreshReader() {
	text := strings.TrimSpace(m.page.Text)
	if text == "" && !m.pageLoading && m.page.Total == 0 {
		text = helperStyle.Render("No text could be extracted from this page.")
	}
	m.readerViewport.SetContent(wordwrap.String(text, m.readerViewport.Width))
	m.readerViewport.GotoTop()
}

func (m *model) refreshChat() {
	width := m.chatViewport.Width
	if width <= 0 {
		width = chatPanelWidth - 4
	}
	var b strings.Builder
	for idx, message := range m.chat.Messages() {
		if idx > 0 {
			b.WriteString("\n\n")
		}
		label := chatUserStyle.Render("You")
		if message.Role == llm.RoleModel {
			label = chatBuddyStyle.Render("Study Buddy")
		}
		text := wordwrap.String(message.Text, width-2)
		if message.Failed {
			text = errorStyle.Render(text)
		}
		b.WriteString(label)
		b.WriteRune('\n')
		b.WriteString(indentMultiline(text, "  "))
	}
	if m.chat.Pending() {
		b.WriteString("\n\n")
		b.WriteString(helperStyle.Render(m.spinner.View() + " Thinking…"))
	}
	m.chatViewport.SetContent(b.String())
	m.chatViewport.GotoBottom()
}

func (m *model) chatPanelView() string {
	title := sectionHeaderStyle.Render(fmt.Sprintf("%s Study Buddy", icons.Glyph("Sparkles")))
	if hint := m.nav.ContextHint(m.catalog); hint != "" {
		title += "\n" + helperStyle.Render(wordwrap.String(hint, chatPanelWidth-4))
	}
	body := joinNonEmpty([]string{
		title,
		m.chatViewport.View(),
		m.chatInput.View(),
		helperStyle.Render("Enter send • Ctrl+L new chat • Esc close"),
	})
	return chatPanelStyle.Width(chatPanelWidth).Render(body)
}

func (m *model) statusBarView() string {
	subjects := m.catalog.Subjects()
	stats := []string{
		fmt.Sprintf("Subjects %d", len(subjects)),
		fmt.Sprintf("Documents %d", len(m.catalog.Documents())),
	}
	if m.config.LLM != nil {
		stats = append(stats, "LLM "+m.config.LLM.Name())
	} else {
		stats = append(stats, "LLM disabled")
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	running := m.jobs.Running()
	if len(running) == 0 {
		return nil
	}
	kinds := make([]string, 0, len(running))
	for kind := range running {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		badges = append(badges, fmt.Sprintf("%s×%d", kind, running[jobKind(kind)]))
	}
	return badges
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"↑/↓", "Move"},
		{"Enter", "Open"},
		{"/", "Search"},
		{"u", "Upload PDF"},
		{"n", "New subject"},
		{"c", "Study Buddy"},
		{"←/→", "Turn page"},
		{"f", "Fullscreen"},
		{"x/X", "Remove"},
		{"?", "Toggle cheatsheet"},
	}
	rows := []string{sectionHeaderStyle.Render("Navigation Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Getting around"),
		helperStyle.Render("• pick a subject on the dashboard, or press a to list every document."),
		helperStyle.Render("• u uploads a PDF into the open subject; uploads from the dashboard land in Other."),
		helperStyle.Render("• documents reopen on the page you left; g / G jump to the first or last page."),
		helperStyle.Render("• c opens the study buddy, which knows the subject and file you have open."),
		helperStyle.Render("• Esc steps back, q or Ctrl+C quits."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#4f46e5")
	heroInkColor           = lipgloss.Color("#eef2ff")
	heroSecondaryTextColor = lipgloss.Color("#a5b4fc")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	heroSummaryStyle   = lipgloss.NewStyle().PaddingLeft(2)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	mainColumnStyle    = lipgloss.NewStyle().Padding(0, 1)
	sidebarStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	chatPanelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	chatUserStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	chatBuddyStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroSecondaryTextColor)
	readerTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	resumeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroInkColor).Background(heroAccentColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e1b4b"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"╔═╗╔╦╗╦ ╦╔╦╗╦ ╦  ╦ ╦╦ ╦╔╗ ",
		"╚═╗ ║ ║ ║ ║║╚╦╝  ╠═╣║ ║╠╩╗",
		"╚═╝ ╩ ╚═╝═╩╝ ╩   ╩ ╩╚═╝╚═╝",
	}
)
