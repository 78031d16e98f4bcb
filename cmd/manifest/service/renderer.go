package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/resiflow/manifest/cmd/manifest/models"
)

// RenderedDocument is the output of a document renderer. Extension names
// the file suffix the content actually is, without the dot.
type RenderedDocument struct {
	Content   []byte
	Extension string
}

// DocumentRenderer renders a manifest version into a printable document.
// Implementations that cannot produce a document should return
// ErrTemplateNotFound so the caller can retry with the plain-text dump.
type DocumentRenderer interface {
	Render(ctx context.Context, templateRef string, v *models.ManifestVersion, lines []*models.WasteLine) (*RenderedDocument, error)
}

// DefaultTemplateRef is the template used when a caller does not name one.
const DefaultTemplateRef = "manifest"

const defaultManifestTemplate = `HAZARDOUS WASTE MANIFEST {{.Version.DisplayNumber}}
Status: {{.Version.Status}}
Registry: {{.Version.EnvironmentalRegistry}}

Generator: {{.Version.Generator.Name}}
Transporter: {{.Version.Transporter.Name}} (auth {{.Version.TransporterAuthorization}})
Recipient: {{.Version.Recipient.Name}} (auth {{.Version.RecipientAuthorization}})

Waste lines:
{{range $i, $l := .Lines}}{{$l.Position}}. {{$l.Name}} - {{printf "%.2f" $l.QuantityKg}} kg [{{$l.Hazard.Letters}}] {{$l.Packaging}}
{{end}}`

// TemplateRenderer renders manifest documents from registered text
// templates.
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// NewTemplateRenderer creates a renderer preloaded with the default
// manifest template.
func NewTemplateRenderer() *TemplateRenderer {
	r := &TemplateRenderer{templates: make(map[string]*template.Template)}
	r.templates[DefaultTemplateRef] = template.Must(
		template.New(DefaultTemplateRef).Parse(defaultManifestTemplate))
	return r
}

// Register adds or replaces a named template.
func (r *TemplateRenderer) Register(name, body string) error {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return fmt.Errorf("%w: template %s: %v", models.ErrRenderError, name, err)
	}
	r.templates[name] = tmpl
	return nil
}

// Render executes the named template against the version and its lines.
func (r *TemplateRenderer) Render(ctx context.Context, templateRef string, v *models.ManifestVersion, lines []*models.WasteLine) (*RenderedDocument, error) {
	if templateRef == "" {
		templateRef = DefaultTemplateRef
	}

	tmpl, ok := r.templates[templateRef]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, templateRef)
	}

	var buf bytes.Buffer
	data := struct {
		Version *models.ManifestVersion
		Lines   []*models.WasteLine
	}{Version: v, Lines: lines}

	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: template %s: %v", models.ErrRenderError, templateRef, err)
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: template %s produced no output", models.ErrEmptyArtifact, templateRef)
	}

	return &RenderedDocument{Content: buf.Bytes(), Extension: "txt"}, nil
}
