package audit

import "testing"

func TestTruncateArgumentPreview_ShortStringUnchanged(t *testing.T) {
	s := "file_read(path=\"a.txt\")"
	if got := TruncateArgumentPreview(s); got != s {
		t.Fatalf("got %q, want unchanged", got)
	}
}

func TestTruncateArgumentPreview_LongStringTruncatedRuneSafe(t *testing.T) {
	runes := make([]rune, argumentPreviewLimit+50)
	for i := range runes {
		runes[i] = 'é' // multi-byte rune, to exercise rune-safety
	}
	s := string(runes)

	got := TruncateArgumentPreview(s)
	if len([]rune(got)) != argumentPreviewLimit {
		t.Fatalf("got %d runes, want %d", len([]rune(got)), argumentPreviewLimit)
	}
}

func TestLogSink_WriteDoesNotPanic(t *testing.T) {
	sink := NewLogSink(zapNop())
	sink.Write(Event{EventID: "e1", ToolName: "file_read", Decision: "allow"})
	sink.Close()
}
