package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Composer renders markdown email templates into messages.
type Composer struct {
	fs              fs.FS
	md              goldmark.Markdown
	templates       map[string]*emailTemplate
	layouts         map[string]*template.Template
	templateDir     string
	layoutDir       string
	fallbackSubject string
	mu              sync.RWMutex
}

type emailTemplate struct {
	meta    map[string]any
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithTemplateDir sets the directory holding markdown templates. Default ".".
func WithTemplateDir(dir string) ComposerOption {
	return func(c *Composer) {
		if dir != "" {
			c.templateDir = dir
		}
	}
}

// WithLayoutDir sets the directory holding layouts. Default "layouts".
func WithLayoutDir(dir string) ComposerOption {
	return func(c *Composer) {
		if dir != "" {
			c.layoutDir = dir
		}
	}
}

// WithFallbackSubject is used for templates without a subject.
func WithFallbackSubject(s string) ComposerOption {
	return func(c *Composer) {
		c.fallbackSubject = s
	}
}

// NewComposer reads templates from fsys. Parsed templates are cached.
func NewComposer(fsys fs.FS, opts ...ComposerOption) *Composer {
	c := &Composer{
		fs:          fsys,
		md:          goldmark.New(goldmark.WithExtensions(extension.GFM)),
		templates:   make(map[string]*emailTemplate),
		layouts:     make(map[string]*template.Template),
		templateDir: ".",
		layoutDir:   "layouts",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose executes the named template with data and returns a message
// with subject and bodies set. An empty layout leaves the HTML unwrapped.
func (c *Composer) Compose(name, layout string, data any) (*Message, error) {
	tpl, err := c.template(name)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := tpl.body.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var body bytes.Buffer
	if err := c.md.Convert(markdown.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	html := body.String()
	if layout != "" {
		lt, err := c.layout(layout)
		if err != nil {
			return nil, err
		}
		var out bytes.Buffer
		if err := lt.Execute(&out, map[string]any{
			"Content":  template.HTML(html), //nolint:gosec // goldmark output
			"Metadata": tpl.meta,
			"Data":     data,
		}); err != nil {
			return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, layout, err)
		}
		html = out.String()
	}

	subject := c.fallbackSubject
	if tpl.subject != nil {
		var s bytes.Buffer
		if err := tpl.subject.Execute(&s, data); err != nil {
			return nil, fmt.Errorf("%w: subject of %s: %v", ErrRenderFailed, name, err)
		}
		subject = strings.TrimSpace(s.String())
	}

	return &Message{Subject: subject, HTML: html, Text: markdown.String()}, nil
}

func (c *Composer) template(name string) (*emailTemplate, error) {
	c.mu.RLock()
	tpl, ok := c.templates[name]
	c.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	content, err := fs.ReadFile(c.fs, path.Join(c.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	tpl = &emailTemplate{meta: meta}
	if tpl.body, err = texttemplate.New(name).Parse(body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}
	if s := subjectOf(meta); s != "" {
		if tpl.subject, err = texttemplate.New(name + ":subject").Parse(s); err != nil {
			return nil, fmt.Errorf("%w: subject of %s: %v", ErrRenderFailed, name, err)
		}
	}

	c.mu.Lock()
	c.templates[name] = tpl
	c.mu.Unlock()
	return tpl, nil
}

func (c *Composer) layout(name string) (*template.Template, error) {
	c.mu.RLock()
	lt, ok := c.layouts[name]
	c.mu.RUnlock()
	if ok {
		return lt, nil
	}

	content, err := fs.ReadFile(c.fs, path.Join(c.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}
	if lt, err = template.New(name).Parse(string(content)); err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
	}

	c.mu.Lock()
	c.layouts[name] = lt
	c.mu.Unlock()
	return lt, nil
}

// subjectOf accepts "subject" in any letter case.
func subjectOf(meta map[string]any) string {
	for k, v := range meta {
		if strings.EqualFold(k, "subject") {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// splitFrontmatter separates a leading YAML block delimited by "---" lines
// from the markdown body. Content without it has empty metadata.
func splitFrontmatter(content []byte) (map[string]any, string, error) {
	meta := make(map[string]any)
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return meta, text, nil
	}

	rest := text[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	var head string
	switch {
	case strings.HasPrefix(rest, frontmatterDelimiter):
		head, rest = "", rest[len(frontmatterDelimiter):]
	case end >= 0:
		head, rest = rest[:end], rest[end+1+len(frontmatterDelimiter):]
	default:
		return nil, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}
	rest = strings.TrimPrefix(rest, "\n")

	if strings.TrimSpace(head) != "" {
		if err := yaml.Unmarshal([]byte(head), &meta); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	return meta, rest, nil
}
