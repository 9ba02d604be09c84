// Package tagfile reads, mutates and writes auto-tag documents.
//
// A tag document is a Markdown file named after a tag identifier:
//
//	# Auto-tag: <tag>
//
//	<!-- start auto-tags -->
//	[[<title-1>]]
//	[[<title-2>]]
//	<!-- end auto-tags -->
//
// Only the region between the markers is managed. Everything else, including
// non-backlink lines inside the region, is preserved verbatim.
package tagfile

import (
	"fmt"
	"strings"

	"github.com/starford/autotag/internal/apperr"
)

const (
	StartMarker = "<!-- start auto-tags -->"
	EndMarker   = "<!-- end auto-tags -->"
)

// regionLine is a line between the markers. Link is non-empty when the line
// is a backlink entry.
type regionLine struct {
	raw  string
	link string
}

// Document is the parsed form of a tag document.
type Document struct {
	Tag string

	head     []string // lines before the start marker
	start    string   // start marker line as written
	region   []regionLine
	end      string // end marker line as written
	tail     []string
	trailing bool // file ended with a newline
}

// New returns a fresh document for tag with no backlinks.
func New(tag string) *Document {
	return &Document{
		Tag:   tag,
		head:  []string{"# Auto-tag: " + tag, ""},
		start: StartMarker,
		end:   EndMarker,
	}
}

// Parse reads a tag document. A file missing either marker, or with the end
// marker before the start marker, is rejected with apperr.ErrMalformed.
func Parse(tag string, data []byte) (*Document, error) {
	lines := strings.Split(string(data), "\n")
	trailing := false
	if n := len(lines); n > 0 && lines[n-1] == "" {
		trailing = true
		lines = lines[:n-1]
	}

	startIdx, endIdx := -1, -1
	for i, line := range lines {
		switch markerOf(line) {
		case StartMarker:
			if startIdx < 0 {
				startIdx = i
			}
		case EndMarker:
			if startIdx >= 0 && endIdx < 0 {
				endIdx = i
			}
		}
	}
	if startIdx < 0 {
		return nil, fmt.Errorf("tagfile: %s: %w: missing start marker", tag, apperr.ErrMalformed)
	}
	if endIdx < 0 {
		return nil, fmt.Errorf("tagfile: %s: %w: missing end marker", tag, apperr.ErrMalformed)
	}

	d := &Document{
		Tag:      tag,
		head:     append([]string(nil), lines[:startIdx]...),
		start:    lines[startIdx],
		end:      lines[endIdx],
		tail:     append([]string(nil), lines[endIdx+1:]...),
		trailing: trailing,
	}
	for _, line := range lines[startIdx+1 : endIdx] {
		d.region = append(d.region, regionLine{raw: line, link: linkTitle(line)})
	}
	return d, nil
}

// Backlinks returns the titles linked from the region, in file order.
func (d *Document) Backlinks() []string {
	var out []string
	for _, l := range d.region {
		if l.link != "" {
			out = append(out, l.link)
		}
	}
	return out
}

// Has reports whether title has a backlink entry.
func (d *Document) Has(title string) bool {
	for _, l := range d.region {
		if l.link == title {
			return true
		}
	}
	return false
}

// Add appends a backlink for title directly above the end marker. It
// returns false without modifying the document if the entry exists.
func (d *Document) Add(title string) bool {
	if d.Has(title) {
		return false
	}
	d.region = append(d.region, regionLine{raw: formatLink(title), link: title})
	return true
}

// Remove drops the backlink entry for title. It returns false if there was
// none.
func (d *Document) Remove(title string) bool {
	kept := d.region[:0]
	removed := false
	for _, l := range d.region {
		if l.link == title {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	d.region = kept
	return removed
}

// Empty reports whether no backlink entry remains.
func (d *Document) Empty() bool {
	for _, l := range d.region {
		if l.link != "" {
			return false
		}
	}
	return true
}

// Bytes renders the document.
func (d *Document) Bytes() []byte {
	var b strings.Builder
	lines := make([]string, 0, len(d.head)+len(d.region)+len(d.tail)+2)
	lines = append(lines, d.head...)
	lines = append(lines, d.start)
	for _, l := range d.region {
		lines = append(lines, l.raw)
	}
	lines = append(lines, d.end)
	lines = append(lines, d.tail...)

	b.WriteString(strings.Join(lines, "\n"))
	if d.trailing {
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func formatLink(title string) string {
	return "[[" + title + "]]"
}

// linkTitle returns the title of a backlink line, or "" for any other line.
func linkTitle(line string) string {
	s := strings.TrimRight(line, "\r")
	if !strings.HasPrefix(s, "[[") || !strings.HasSuffix(s, "]]") {
		return ""
	}
	title := s[2 : len(s)-2]
	if title == "" || strings.Contains(title, "]]") || strings.Contains(title, "[[") {
		return ""
	}
	return title
}

func markerOf(line string) string {
	return strings.TrimSpace(line)
}
