package embedding

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestErrorTruncatesPreview(t *testing.T) {
	cause := errors.New("rate limited")
	err := &Error{Text: strings.Repeat("x", 100), Err: cause}

	msg := err.Error()
	if !strings.Contains(msg, strings.Repeat("x", 40)+"...") {
		t.Errorf("long text should be truncated in %q", msg)
	}
	if !strings.Contains(msg, "rate limited") {
		t.Errorf("cause missing from %q", msg)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestErrorShortText(t *testing.T) {
	err := &Error{Text: "kurz", Err: errors.New("boom")}
	if strings.Contains(err.Error(), "...") {
		t.Errorf("short text must not be truncated: %q", err.Error())
	}
}

func TestNewOpenAIEmbedderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder("", "", "text-embedding-3-small", testLogger()); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewOpenAIEmbedderDimensions(t *testing.T) {
	small, err := NewOpenAIEmbedder("sk-test", "", "text-embedding-3-small", testLogger())
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	if small.Dimension() != 1536 {
		t.Errorf("small model dimension = %d, want 1536", small.Dimension())
	}

	large, err := NewOpenAIEmbedder("sk-test", "http://localhost:1234/v1", "text-embedding-3-large", testLogger())
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	if large.Dimension() != 3072 {
		t.Errorf("large model dimension = %d, want 3072", large.Dimension())
	}
}
