package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	for _, format := range []string{"txt", "md", "pdf", "xlsx", "html"} {
		if _, err := r.Get(format); err != nil {
			t.Errorf("no parser registered for %s", format)
		}
	}
	if _, err := r.Get("docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unsupported format: err = %v, want ErrUnknownFormat", err)
	}
}

func TestTextParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "section.txt")
	content := "Section 1. Short title and commencement.\n\nThis Act may be called the Companies Act."
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	parsed, err := r.ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Method != "text" {
		t.Errorf("method = %q", parsed.Method)
	}
	if parsed.Text != content {
		t.Errorf("text = %q", parsed.Text)
	}
}

func TestHTMLParserStripsMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circular.html")
	html := `<html><head><style>body { color: red; }</style>
		<script>alert("x");</script></head>
		<body><h1>General Circular No. 16/2013</h1>
		<p>Pursuant to Section 45 &amp; Section 46 of the Act.</p></body></html>`
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}

	parsed, err := (&HTMLParser{}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Method != "html" {
		t.Errorf("method = %q", parsed.Method)
	}
	for _, want := range []string{"General Circular No. 16/2013", "Section 45 & Section 46"} {
		if !strings.Contains(parsed.Text, want) {
			t.Errorf("text missing %q: %q", want, parsed.Text)
		}
	}
	for _, banned := range []string{"<p>", "alert", "color: red"} {
		if strings.Contains(parsed.Text, banned) {
			t.Errorf("text contains markup remnant %q", banned)
		}
	}
}

func TestHTMLParserEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.html")
	if err := os.WriteFile(path, []byte("<html><body></body></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&HTMLParser{}).Parse(context.Background(), path); err == nil {
		t.Error("empty document should error")
	}
}

func TestParseFileUnknownExtension(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ParseFile(context.Background(), "/tmp/file.docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown extension: err = %v, want ErrUnknownFormat", err)
	}
}
