package application

import (
	"strings"
	"testing"
)

const testBaseURL = "https://blog.example.com"

func TestExtractSnippet(t *testing.T) {
	tests := []struct {
		name     string
		markdown []byte
		expected string
	}{
		{
			name:     "First paragraph after title",
			markdown: []byte("# Title\nThis is the first paragraph\n\nMore content"),
			expected: "This is the first paragraph",
		},
		{
			name:     "Multi-line first paragraph",
			markdown: []byte("# Title\nFirst line of paragraph.\nSecond line of paragraph.\n\nSecond paragraph"),
			expected: "First line of paragraph. Second line of paragraph.",
		},
		{
			name:     "Skip empty lines after title",
			markdown: []byte("# Title\n\n\nThis is the content after blank lines"),
			expected: "This is the content after blank lines",
		},
		{
			name:     "Multiple headings",
			markdown: []byte("# Title\n## Subtitle\nFirst paragraph content"),
			expected: "First paragraph content",
		},
		{
			name:     "Stop at code block",
			markdown: []byte("# Title\nFirst paragraph\n```\ncode\n```"),
			expected: "First paragraph",
		},
		{
			name:     "Stop at list",
			markdown: []byte("# Title\nIntro text\n- List item"),
			expected: "Intro text",
		},
		{
			name:     "Stop at horizontal rule",
			markdown: []byte("# Title\nContent before rule\n---\nAfter"),
			expected: "Content before rule",
		},
		{
			name:     "Stop at table",
			markdown: []byte("# Title\nIntro\n| Col1 | Col2 |"),
			expected: "Intro",
		},
		{
			name:     "Truncate long paragraph",
			markdown: []byte("# Title\nThis is a very long paragraph that exceeds the maximum length limit and should be truncated at a word boundary to ensure that the snippet looks clean and professional without cutting words in the middle which would look unprofessional."),
			expected: "This is a very long paragraph that exceeds the maximum length limit and should be truncated at a word boundary to ensure that the snippet looks clean and professional without cutting words in the...",
		},
		{
			name:     "Only title, no content",
			markdown: []byte("# Title"),
			expected: "",
		},
		{
			name:     "Empty markdown",
			markdown: []byte(""),
			expected: "",
		},
		{
			name:     "No title, direct content",
			markdown: []byte("This is content without a title.\nSecond line."),
			expected: "This is content without a title. Second line.",
		},
		{
			name:     "Paragraph with inline formatting",
			markdown: []byte("# Title\nThis has **bold** and *italic* text."),
			expected: "This has **bold** and *italic* text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSnippet(tt.markdown)
			if result != tt.expected {
				t.Errorf("extractSnippet() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "No tabs",
			markdown: "plain text\n",
			expected: "plain text\n",
		},
		{
			name:     "Leading tab",
			markdown: "\tcode",
			expected: "  code",
		},
		{
			name:     "Tab after one column",
			markdown: "a\tb",
			expected: "a b",
		},
		{
			name:     "Tab after two columns",
			markdown: "ab\tc",
			expected: "ab  c",
		},
		{
			name:     "Column resets per line",
			markdown: "abc\n\tx",
			expected: "abc\n  x",
		},
		{
			name:     "Multibyte rune counts as one column",
			markdown: "é\tx",
			expected: "é x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(expandTabs([]byte(tt.markdown), 2))
			if result != tt.expected {
				t.Errorf("expandTabs(%q) = %q, want %q", tt.markdown, result, tt.expected)
			}
		})
	}
}

func TestMarkdownRendererImpl_Render(t *testing.T) {
	renderer := NewMarkdownRenderer("")

	tests := []struct {
		name           string
		markdown       []byte
		expectedSnip   string
		expectedInHTML []string
	}{
		{
			name:           "Basic markdown rendering",
			markdown:       []byte("# Hello World\nThis is a test paragraph.\n\nSome **bold** text"),
			expectedSnip:   "This is a test paragraph.",
			expectedInHTML: []string{"<h1>Hello World</h1>", "<strong>bold</strong>"},
		},
		{
			name:           "Markdown without title",
			markdown:       []byte("Just some content here.\nMore content on line two."),
			expectedSnip:   "Just some content here. More content on line two.",
			expectedInHTML: []string{"<p>Just some content here.<br />"},
		},
		{
			name:           "Complex markdown with GFM features",
			markdown:       []byte("# Complex Post\nThis is my introduction paragraph.\n\n- [ ] Task 1\n- [x] Task 2\n\n| Col1 | Col2 |\n|------|------|\n| A    | B    |"),
			expectedSnip:   "This is my introduction paragraph.",
			expectedInHTML: []string{"<table>", `type="checkbox"`},
		},
		{
			name:           "Markdown with only title",
			markdown:       []byte("# Only a Title"),
			expectedSnip:   "",
			expectedInHTML: []string{"<h1>Only a Title</h1>"},
		},
		{
			name:           "Empty markdown",
			markdown:       []byte(""),
			expectedSnip:   "",
			expectedInHTML: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render(tt.markdown)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if result.Summary != tt.expectedSnip {
				t.Errorf("Summary = %q, want %q", result.Summary, tt.expectedSnip)
			}

			for _, expected := range tt.expectedInHTML {
				if !strings.Contains(result.HTML, expected) {
					t.Errorf("HTML does not contain expected string %q\nHTML:\n%s", expected, result.HTML)
				}
			}
		})
	}
}

func TestMarkdownRendererImpl_Render_Deterministic(t *testing.T) {
	renderer := NewMarkdownRenderer("")
	markdown := []byte("# Title\n\n\tindented\n\nSome *text*.\n")

	first, err := renderer.Render(markdown)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	second, err := NewMarkdownRenderer("").Render(markdown)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if first.HTML != second.HTML {
		t.Errorf("Render is not deterministic:\n%s\n---\n%s", first.HTML, second.HTML)
	}
}

func TestNewMarkdownRenderer(t *testing.T) {
	renderer := NewMarkdownRenderer(testBaseURL + "/")

	if renderer == nil {
		t.Fatal("NewMarkdownRenderer returned nil")
	}

	impl, ok := renderer.(*MarkdownRendererImpl)
	if !ok {
		t.Fatal("NewMarkdownRenderer did not return *MarkdownRendererImpl")
	}

	if impl.baseURL != testBaseURL {
		t.Errorf("baseURL = %q, want %q", impl.baseURL, testBaseURL)
	}

	if impl.renderer == nil {
		t.Error("renderer is nil")
	}
}

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{
			name:     "Absolute HTTP URL",
			url:      "http://example.com/page",
			expected: false,
		},
		{
			name:     "Absolute HTTPS URL",
			url:      "https://example.com/page",
			expected: false,
		},
		{
			name:     "Protocol-relative URL",
			url:      "//example.com/page",
			expected: false,
		},
		{
			name:     "Mailto link",
			url:      "mailto:user@example.com",
			expected: false,
		},
		{
			name:     "Data URI",
			url:      "data:image/png;base64,iVBOR...",
			expected: false,
		},
		{
			name:     "Fragment",
			url:      "#section",
			expected: false,
		},
		{
			name:     "Absolute path",
			url:      "/about/contact",
			expected: true,
		},
		{
			name:     "Relative path with ./",
			url:      "./images/photo.jpg",
			expected: true,
		},
		{
			name:     "Relative path with ../",
			url:      "../docs/readme.md",
			expected: true,
		},
		{
			name:     "Simple filename",
			url:      "image.png",
			expected: true,
		},
		{
			name:     "Empty string",
			url:      "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRelativeLink(tt.url)
			if result != tt.expected {
				t.Errorf("isRelativeLink(%q) = %v, want %v", tt.url, result, tt.expected)
			}
		})
	}
}

func TestRelativeLinkTransformer(t *testing.T) {
	renderer := NewMarkdownRenderer(testBaseURL)

	tests := []struct {
		name           string
		markdown       string
		expectedInHTML []string
		notInHTML      []string
	}{
		{
			name:           "Relative link transformation",
			markdown:       "[Link to about](/about)",
			expectedInHTML: []string{`href="https://blog.example.com/about"`},
		},
		{
			name:           "Relative image transformation",
			markdown:       "![Alt text](photo.jpg)",
			expectedInHTML: []string{`src="https://blog.example.com/images/photo.jpg"`},
		},
		{
			name:           "Link to sibling post",
			markdown:       "[Previous](2024-01-01-hello.markdown)",
			expectedInHTML: []string{`href="https://blog.example.com/2024-01-01-hello"`},
		},
		{
			name:           "Relative path with parent directory",
			markdown:       "[Link](../other/page.html)",
			expectedInHTML: []string{`href="https://blog.example.com/page"`},
		},
		{
			name:           "Absolute link unchanged",
			markdown:       "[External](https://example.com/page)",
			expectedInHTML: []string{`href="https://example.com/page"`},
			notInHTML:      []string{"blog.example.com"},
		},
		{
			name:           "Protocol-relative URL unchanged",
			markdown:       "[Link](//example.com/page)",
			expectedInHTML: []string{`href="//example.com/page"`},
		},
		{
			name:           "Mailto unchanged",
			markdown:       "[Email](mailto:test@example.com)",
			expectedInHTML: []string{`href="mailto:test@example.com"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			for _, expected := range tt.expectedInHTML {
				if !strings.Contains(result.HTML, expected) {
					t.Errorf("HTML does not contain expected string %q\nHTML:\n%s", expected, result.HTML)
				}
			}

			for _, notExpected := range tt.notInHTML {
				if strings.Contains(result.HTML, notExpected) {
					t.Errorf("HTML contains unexpected string %q\nHTML:\n%s", notExpected, result.HTML)
				}
			}
		})
	}
}

func TestRelativeLinkTransformer_NoBaseURL(t *testing.T) {
	renderer := NewMarkdownRenderer("")

	result, err := renderer.Render([]byte("[About](/about) ![Logo](logo.png)"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, expected := range []string{`href="/about"`, `src="logo.png"`} {
		if !strings.Contains(result.HTML, expected) {
			t.Errorf("HTML does not contain expected string %q\nHTML:\n%s", expected, result.HTML)
		}
	}
}
