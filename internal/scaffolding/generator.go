// Package scaffolding writes a starter site that prime can serve and build.
package scaffolding

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"text/template"

	"github.com/conneroisu/prime-website/internal/errors"
)

// SiteGenerator renders the built-in site templates into a directory.
type SiteGenerator struct {
	templates map[string]string
}

// GenerateOptions holds options for site generation
type GenerateOptions struct {
	// Dir is the site root to create.
	Dir string
	// Name is used in package.json and as the Docker image name.
	Name string
	// Port is the port the container exposes.
	Port int
	// Force overwrites existing files.
	Force bool
}

// TemplateContext is the data every site template is executed with.
type TemplateContext struct {
	Name string
	Port int
}

var siteName = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// NewSiteGenerator creates a generator with the built-in templates.
func NewSiteGenerator() *SiteGenerator {
	return &SiteGenerator{templates: builtinTemplates()}
}

// Files returns the relative paths the generator writes, sorted.
func (g *SiteGenerator) Files() []string {
	files := make([]string, 0, len(g.templates))
	for name := range g.templates {
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}

// Generate writes the starter site and returns the files it wrote. Without
// Force nothing is written when any target file already exists.
func (g *SiteGenerator) Generate(opts GenerateOptions) ([]string, error) {
	if !siteName.MatchString(opts.Name) {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("site name %q must be lowercase letters, digits, '.', '_' or '-'", opts.Name))
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("port %d out of range", opts.Port))
	}

	files := g.Files()
	if !opts.Force {
		for _, rel := range files {
			path := filepath.Join(opts.Dir, rel)
			if _, err := os.Stat(path); err == nil {
				return nil, errors.NewValidationError(errors.ErrCodeValidationFailed,
					"file already exists (use --force to overwrite)").WithPath(path)
			}
		}
	}

	ctx := TemplateContext{Name: opts.Name, Port: opts.Port}
	written := make([]string, 0, len(files))
	for _, rel := range files {
		path := filepath.Join(opts.Dir, rel)
		if err := g.generateFile(path, g.templates[rel], ctx); err != nil {
			return written, errors.WrapIO(err, errors.ErrCodeInternalError, "failed to generate file", path)
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *SiteGenerator) generateFile(path, content string, ctx TemplateContext) error {
	// Views are html/template sources themselves, so templates use [[ ]].
	tmpl, err := template.New(filepath.Base(path)).Delims("[[", "]]").Parse(content)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
