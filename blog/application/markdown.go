package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/dfryer1193/mdblog/blog/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	maxLength = 200
	tabWidth  = 2
)

// MarkdownProcessingResult contains the results of processing a markdown body
type MarkdownProcessingResult struct {
	Summary string
	HTML    string
}

type relativeLinkTransformer struct {
	domain string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		link, linkOk := n.(*ast.Link)
		img, imgOk := n.(*ast.Image)
		if !linkOk && !imgOk {
			return ast.WalkContinue, nil
		}

		dest := ""
		if linkOk {
			dest = string(link.Destination)
		} else if imgOk {
			dest = string(img.Destination)
		}

		if isRelativeLink(dest) {
			destFile := path.Base(dest)
			if imgOk {
				img.Destination = []byte(t.domain + "/images/" + destFile)
			} else if linkOk {
				// Links to sibling posts point at the post id
				destFile = strings.TrimSuffix(destFile, domain.PostSuffix)
				destFile = strings.TrimSuffix(destFile, ".md")
				destFile = strings.TrimSuffix(destFile, ".html")
				link.Destination = []byte(t.domain + "/" + destFile)
			}
		}

		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	// Absolute path check
	if strings.HasPrefix(dest, "/") {
		if strings.HasPrefix(dest, "//") {
			return false
		}
		return true
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	if strings.HasPrefix(dest, "#") || strings.Contains(dest, ":") {
		return false
	}

	return true
}

// MarkdownRenderer defines the interface for converting markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown []byte) (*MarkdownProcessingResult, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
	baseURL  string
}

// NewMarkdownRenderer builds a renderer. When baseURL is non-empty, relative
// links and images are rewritten onto it.
func NewMarkdownRenderer(baseURL string) MarkdownRenderer {
	baseURL = strings.TrimSuffix(baseURL, "/")

	parserOpts := []parser.Option{}
	if baseURL != "" {
		parserOpts = append(parserOpts, parser.WithASTTransformers(
			util.Prioritized(&relativeLinkTransformer{domain: baseURL}, 100),
		))
	}

	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
		baseURL:  baseURL,
	}
}

func (r *MarkdownRendererImpl) Render(markdown []byte) (*MarkdownProcessingResult, error) {
	expanded := expandTabs(markdown, tabWidth)

	var buf bytes.Buffer
	err := r.renderer.Convert(expanded, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &MarkdownProcessingResult{
		Summary: extractSnippet(markdown),
		HTML:    buf.String(),
	}, nil
}

// expandTabs replaces tabs with spaces up to the next multiple of width.
func expandTabs(markdown []byte, width int) []byte {
	if !bytes.ContainsRune(markdown, '\t') {
		return markdown
	}

	var buf bytes.Buffer
	buf.Grow(len(markdown))
	col := 0
	for _, b := range markdown {
		switch b {
		case '\t':
			n := width - col%width
			buf.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			buf.WriteByte(b)
			col = 0
		default:
			buf.WriteByte(b)
			// continuation bytes of a UTF-8 sequence do not advance the column
			if b&0xC0 != 0x80 {
				col++
			}
		}
	}

	return buf.Bytes()
}

func extractSnippet(markdown []byte) string {
	lines := strings.Split(string(markdown), "\n")
	var paragraphLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Skip headings before we find content
		if strings.HasPrefix(trimmed, "#") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		if trimmed == "" {
			if len(paragraphLines) > 0 {
				break // End of first paragraph
			}
			continue
		}

		// Stop at code blocks, horizontal rules, lists, tables
		if strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "---") ||
			strings.HasPrefix(trimmed, "***") ||
			strings.HasPrefix(trimmed, "- ") ||
			strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "+ ") ||
			strings.HasPrefix(trimmed, "|") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		paragraphLines = append(paragraphLines, trimmed)
	}

	if len(paragraphLines) == 0 {
		return ""
	}

	snippet := strings.Join(paragraphLines, " ")

	if len(snippet) > maxLength {
		snippet = snippet[:maxLength]
		if lastSpace := strings.LastIndexAny(snippet, " \t"); lastSpace > 0 {
			snippet = snippet[:lastSpace]
		}
		snippet += "..."
	}

	return snippet
}
