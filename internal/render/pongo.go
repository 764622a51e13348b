// Package render renders template bodies with pongo2 (Django/Jinja syntax).
package render

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Renderer renders a template string against a value mapping.
type Renderer interface {
	RenderString(templateContent string, values map[string]any) (string, error)
}

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	baseDir string
	globals map[string]any
}

// WithBaseDir lets templates {% include %} / {% extends %} / {% import %}
// files below dir. Without it those tags are rejected.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithGlobals seeds values available to every template.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		if len(globals) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(globals))
		}
		for k, v := range globals {
			cfg.globals[strings.TrimSpace(k)] = v
		}
	}
}

// Engine is a pongo2-backed Renderer.
type Engine struct {
	set *pongo2.TemplateSet
}

var _ Renderer = (*Engine)(nil)

// Tags that load other templates from disk. Without a base dir they would
// resolve against the working directory.
var fileTags = []string{"include", "extends", "import"}

// pongo2 rejects context keys that aren't identifiers.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	local, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
	if err != nil {
		return nil, fmt.Errorf("render: create loader: %w", err)
	}

	var set *pongo2.TemplateSet
	banned := []string{"ssi"}
	if cfg.baseDir == "" {
		set = pongo2.NewSet("webtemplate", local)
		banned = append(banned, fileTags...)
	} else {
		root, err := filepath.Abs(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("render: base dir: %w", err)
		}
		set = pongo2.NewSet("webtemplate", &confinedLoader{LocalFilesystemLoader: local, root: root})
	}
	for _, tag := range banned {
		if err := set.BanTag(tag); err != nil {
			return nil, fmt.Errorf("render: ban %s: %w", tag, err)
		}
	}

	if len(cfg.globals) > 0 {
		set.Globals = make(pongo2.Context, len(cfg.globals))
		for k, v := range cfg.globals {
			set.Globals[k] = v
		}
	}
	return &Engine{set: set}, nil
}

// confinedLoader refuses to read templates outside root, including absolute
// paths, which the local loader otherwise accepts as-is.
type confinedLoader struct {
	*pongo2.LocalFilesystemLoader
	root string
}

func (l *confinedLoader) Get(path string) (io.Reader, error) {
	rel, err := filepath.Rel(l.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("template %q is outside %s", path, l.root)
	}
	return l.LocalFilesystemLoader.Get(path)
}

// RenderString parses templateContent and executes it with values as the
// context. Keys that are not valid identifiers are left out of the top level
// but stay reachable through any map that contains them.
func (e *Engine) RenderString(templateContent string, values map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("render: engine is nil")
	}

	tmpl, err := e.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("render: parse template: %w", err)
	}

	ctx := make(pongo2.Context, len(values))
	for k, v := range values {
		if identifierRe.MatchString(k) {
			ctx[k] = v
		}
	}

	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}
	return out, nil
}
