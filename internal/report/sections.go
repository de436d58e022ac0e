package report

import (
	"regexp"
	"strings"
)

// Sections is the best-effort breakdown of a final analysis answer.
type Sections struct {
	Summary         string   `json:"summary"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

var (
	summaryStopRe     = regexp.MustCompile(`(?i)\n\s*\n|gaps:|recommendations:`)
	gapsRe            = regexp.MustCompile(`(?is)gaps:(.*?)(?:recommendations:|$)`)
	recommendationsRe = regexp.MustCompile(`(?is)recommendations:(.*)`)
)

var bulletGlyphs = []string{"-", "•", "*"}

// Parse splits free-form analysis text into summary, gaps and
// recommendations. Markers match case-insensitively and independently;
// when no marker or blank line is present the whole text becomes the
// summary and both lists stay empty.
func Parse(text string) Sections {
	sections := Sections{
		Gaps:            []string{},
		Recommendations: []string{},
	}
	summary := text
	if loc := summaryStopRe.FindStringIndex(text); loc != nil {
		summary = text[:loc[0]]
	}
	sections.Summary = strings.TrimSpace(summary)
	if m := gapsRe.FindStringSubmatch(text); m != nil {
		sections.Gaps = splitItems(m[1])
	}
	if m := recommendationsRe.FindStringSubmatch(text); m != nil {
		sections.Recommendations = splitItems(m[1])
	}
	return sections
}

// splitItems turns a marker section into list entries, stripping one
// leading bullet glyph per line and dropping empty lines.
func splitItems(block string) []string {
	items := []string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		for _, glyph := range bulletGlyphs {
			if strings.HasPrefix(line, glyph) {
				line = strings.TrimSpace(line[len(glyph):])
				break
			}
		}
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}
