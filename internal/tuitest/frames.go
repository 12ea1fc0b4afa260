package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one repaint of the screen: everything written between two
// erase-display sequences.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	// OSC strings (window titles), CSI sequences and the shift in/out bytes.
	escapeSeq = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b\[[0-9;?]*[A-Za-z]|[\x0e\x0f]`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	keep := func(chunk string) {
		chunk = strings.TrimPrefix(strings.Trim(chunk, "\x00"), "\x1b[H")
		text := visibleText(chunk)
		if strings.TrimSpace(text) == "" {
			return
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: chunk, Plain: text})
	}

	start := 0
	for _, loc := range eraseDisplay.FindAllStringIndex(stream, -1) {
		keep(stream[start:loc[0]])
		start = loc[1]
	}
	keep(stream[start:])
	return frames
}

// visibleText drops escape sequences, trailing blanks on each line and
// trailing empty lines.
func visibleText(s string) string {
	lines := strings.Split(escapeSeq.ReplaceAllString(s, ""), "\n")
	end := 0
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
		if strings.TrimSpace(lines[i]) != "" {
			end = i + 1
		}
	}
	return strings.Join(lines[:end], "\n")
}

// FinalFrame returns the last frame with visible text.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// FrameWith returns the first frame whose text contains needle.
func (r *Recording) FrameWith(needle string) (Frame, bool) {
	if r == nil {
		return Frame{}, false
	}
	for _, frame := range r.Frames {
		if strings.Contains(frame.Plain, needle) {
			return frame, true
		}
	}
	return Frame{}, false
}

// PlainText is the whole stream without escape sequences. Renderers that
// repaint only changed lines never emit a complete frame, so text that showed
// up at some point is asserted here.
func (r *Recording) PlainText() string {
	if r == nil {
		return ""
	}
	return visibleText(strings.ReplaceAll(string(r.Raw), "\r", ""))
}

// Contains reports the first needle missing from the stream, if any.
func (r *Recording) Contains(needles ...string) (string, bool) {
	text := r.PlainText()
	for _, needle := range needles {
		if !strings.Contains(text, needle) {
			return needle, false
		}
	}
	return "", true
}
