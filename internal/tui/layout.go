package tui

import (
	"strings"
)

type pageLayout struct {
	windowWidth  int
	windowHeight int
	bodyHeight   int
}

func newPageLayout() pageLayout {
	l := pageLayout{}
	l.Update(100, 32)
	return l
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	// header, status bar, message line and box borders
	const chrome = 9
	l.bodyHeight = height - chrome
	if l.bodyHeight < 8 {
		l.bodyHeight = 8
	}
}

// mainWidth is the width left for the center column once the sidebar and the
// chat panel take their share.
func (l pageLayout) mainWidth(chatOpen, fullscreen bool) int {
	width := l.windowWidth - 4
	if !fullscreen {
		width -= sidebarWidth + 2
	}
	if chatOpen {
		width -= chatPanelWidth + 2
	}
	if width < minMainWidth {
		width = minMainWidth
	}
	return width
}

func (l pageLayout) readerHeight(fullscreen bool) int {
	height := l.bodyHeight - 3
	if fullscreen {
		height += 4
	}
	if height < 4 {
		height = 4
	}
	return height
}

func (l pageLayout) chatHeight() int {
	height := l.bodyHeight - 5
	if height < 4 {
		height = 4
	}
	return height
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
