package application

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfryer1193/mdblog/blog/domain"
)

const (
	topicHeader    = "Topic: "
	dateHeader     = "Date: "
	categoryHeader = "Category: "
)

// ParseResult is a parsed post plus any recoverable problems found in its file.
type ParseResult struct {
	Post     *domain.Post
	Problems []error
}

// PostParser turns post files into domain.Post values.
type PostParser struct {
	markdown MarkdownRenderer
}

func NewPostParser(markdown MarkdownRenderer) *PostParser {
	return &PostParser{
		markdown: markdown,
	}
}

// Parse reads the post file at path. It fails only when the file cannot be
// read or rendered; missing headers and an empty body are reported in
// ParseResult.Problems.
func (p *PostParser) Parse(path string) (*ParseResult, error) {
	name := filepath.Base(path)
	id, ok := strings.CutSuffix(name, domain.PostSuffix)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w %s: missing %s suffix", domain.ErrMalformedPost, path, domain.PostSuffix)
	}

	// Stat before reading so a write racing the read leaves an older mtime
	// behind, which the next check will see as stale.
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", domain.ErrMalformedPost, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w %s: is a directory", domain.ErrMalformedPost, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", domain.ErrMalformedPost, path, err)
	}

	header, body := splitPost(string(raw))

	var topic, date, category string
	var haveTopic, haveDate, haveCategory bool
	for _, line := range header {
		switch {
		case !haveTopic && strings.HasPrefix(line, topicHeader):
			topic, haveTopic = line[len(topicHeader):], true
		case !haveDate && strings.HasPrefix(line, dateHeader):
			date, haveDate = strings.TrimSuffix(line[len(dateHeader):], "\r"), true
		case !haveCategory && strings.HasPrefix(line, categoryHeader):
			category, haveCategory = line[len(categoryHeader):], true
		}
	}

	var problems []error
	if !haveTopic {
		problems = append(problems, fmt.Errorf("%w: no Topic header", domain.ErrIncompletePost))
	}
	if !haveDate {
		problems = append(problems, fmt.Errorf("%w: no Date header", domain.ErrIncompletePost))
	}
	if !haveCategory {
		problems = append(problems, fmt.Errorf("%w: no Category header", domain.ErrIncompletePost))
	}
	if body == "" {
		problems = append(problems, fmt.Errorf("%w: empty body", domain.ErrIncompletePost))
	}

	rendered, err := p.markdown.Render([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("failed to render post %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	return &ParseResult{
		Post: &domain.Post{
			Path:     absPath,
			ID:       id,
			Topic:    topic,
			Date:     date,
			Category: category,
			Contents: body,
			HTML:     rendered.HTML,
			Summary:  rendered.Summary,
			ModTime:  info.ModTime(),
		},
		Problems: problems,
	}, nil
}

// splitPost separates the header lines from the body at the first blank
// line. The body is returned byte-for-byte as it appears in the file.
func splitPost(raw string) ([]string, string) {
	var header []string
	rest := raw
	for rest != "" {
		line, next, found := strings.Cut(rest, "\n")
		if strings.TrimSuffix(line, "\r") == "" {
			if !found {
				return header, ""
			}
			return header, next
		}
		header = append(header, line)
		if !found {
			break
		}
		rest = next
	}
	return header, ""
}
