package tuitest

import "testing"

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[H\x1b[1mStudyHub\x1b[0m   \r\nMathematics\r\n\r\n\x1b[2J\x1b[HReader")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Plain != "StudyHub\nMathematics" {
		t.Fatalf("unexpected first frame %q", frames[0].Plain)
	}
	rec := &Recording{Raw: raw, Frames: frames}
	final, ok := rec.FinalFrame()
	if !ok || final.Plain != "Reader" {
		t.Fatalf("unexpected final frame %+v", final)
	}
}

func TestRecordingContains(t *testing.T) {
	rec := &Recording{Raw: []byte("\x1b[32mAdded\x1b[0m notes.pdf\r\n\x1b]0;title\x07Other")}
	if missing, ok := rec.Contains("Added notes.pdf", "Other"); !ok {
		t.Fatalf("missing %q in %q", missing, rec.PlainText())
	}
	if missing, ok := rec.Contains("Mathematics"); ok || missing != "Mathematics" {
		t.Fatalf("expected Mathematics to be reported missing, got %q", missing)
	}
	var empty *Recording
	if empty.PlainText() != "" {
		t.Fatal("nil recording should have no text")
	}
}

func TestParseFramesSkipsBlankRepaints(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[H   \r\n\x1b[0m\r\n\x1b[J\x1b[?25l\x0fLibrary\x1b[K\r\n  Art  \r\n")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}
	if len(rec.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d: %+v", len(rec.Frames), rec.Frames)
	}
	if rec.Frames[0].Index != 0 || rec.Frames[0].Plain != "Library\n  Art" {
		t.Fatalf("unexpected frame %+v", rec.Frames[0])
	}
	if frame, ok := rec.FrameWith("Art"); !ok || frame.Index != 0 {
		t.Fatalf("expected Art in frame 0, got %+v (%v)", frame, ok)
	}
	if _, ok := rec.FrameWith("Reader"); ok {
		t.Fatal("Reader was never drawn")
	}
	if frames := parseFrames([]byte("\x1b[2J\x1b[H \r\n")); len(frames) != 0 {
		t.Fatalf("blank stream should yield no frames, got %+v", frames)
	}
}
