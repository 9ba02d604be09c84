// Package parser prepares Markdown documents for keyword extraction.
package parser

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var (
	// generatedRe matches a generated block and everything after it.
	generatedRe  = regexp.MustCompile(`(?s)\[//begin.+//end\].*$`)
	curlyQuoteRe = regexp.MustCompile(`[’‘]`)
)

// Result holds the output of preparing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	// Text is the plain prose of Body, one block per line.
	Text string
	// Words is the whitespace-separated word count of the document after
	// the generated block is stripped.
	Words int
}

// Parse strips the generated block, separates frontmatter and renders the
// body to plain text.
func Parse(data []byte) (*Result, error) {
	content := StripGenerated(string(data))
	content = curlyQuoteRe.ReplaceAllString(content, "'")

	fm, body, err := splitFrontmatter([]byte(content))
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Text:        PlainText([]byte(body)),
		Words:       len(strings.Fields(content)),
	}, nil
}

// StripGenerated removes a `[//begin ... //end]` generated block and all
// content following it.
func StripGenerated(s string) string {
	return generatedRe.ReplaceAllString(s, "")
}

// Title returns the document title for a file path: the base name without
// its extension.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PlainText renders Markdown to plain text. Code blocks and raw HTML are
// dropped; each block ends with a newline so sentences never span blocks.
func PlainText(src []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		}
		if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			buf.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep the whole file as body.
		return nil, string(data), nil
	}

	return fm, body, nil
}
