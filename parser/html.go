package parser

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// HTMLParser strips markup from saved web pages (gazette notifications,
// circulars published as HTML).
type HTMLParser struct{}

func (p *HTMLParser) SupportedFormats() []string { return []string{"html", "htm"} }

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

func (p *HTMLParser) Parse(ctx context.Context, path string) (*Parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading HTML file: %w", err)
	}

	text := scriptStyleRe.ReplaceAllString(string(data), " ")
	// Keep block boundaries before dropping tags.
	text = regexp.MustCompile(`(?i)</(p|div|br|tr|li|h[1-6])[^>]*>`).ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer(
		"&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">",
		"&quot;", `"`, "&#39;", "'",
	).Replace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		lines = append(lines, line)
	}
	out := strings.TrimSpace(blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
	if out == "" {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return &Parsed{Text: out, Method: "html"}, nil
}
