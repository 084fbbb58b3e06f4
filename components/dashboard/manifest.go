package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1

	chartEntryPrefix = "chart:"
)

// WidgetManifestDocument is a YAML manifest describing extra cards.
type WidgetManifestDocument struct {
	Version  string           `json:"version" yaml:"version"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Package  string           `json:"package,omitempty" yaml:"package,omitempty"`
	Homepage string           `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Widgets  []ManifestWidget `json:"widgets" yaml:"widgets"`
	Source   string           `json:"-" yaml:"-"`
}

// ManifestWidget describes a single card entry.
type ManifestWidget struct {
	Definition  WidgetDefinition   `json:"definition" yaml:"definition"`
	Provider    ManifestProvider   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Placement   *ManifestPlacement `json:"placement,omitempty" yaml:"placement,omitempty"`
	Maintainers []string           `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestProvider captures discovery metadata about a provider. An Entry of
// the form "chart:<type>" binds the card to the built-in chart provider.
type ManifestProvider struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Entry        string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Package      string   `json:"package,omitempty" yaml:"package,omitempty"`
	DocsURL      string   `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Channel      string   `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// ManifestPlacement seeds an instance of the card when the layout is seeded.
type ManifestPlacement struct {
	Area          string         `json:"area" yaml:"area"`
	Position      *int           `json:"position,omitempty" yaml:"position,omitempty"`
	Roles         []string       `json:"roles,omitempty" yaml:"roles,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// LoadManifestFile reads a manifest from disk and registers it.
func (r *Registry) LoadManifestFile(path string) (*WidgetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers definitions, provider metadata and chart
// bindings from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *WidgetManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, widget := range doc.Widgets {
		code := widget.Definition.Code
		if err := r.RegisterDefinition(widget.Definition); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", code, doc.Source, err)
		}
		r.recordProviderMetadata(code, widget.Provider)
		if chartType, ok := widget.Provider.chartType(); ok {
			if err := r.RegisterProvider(code, NewEChartsProvider(chartType, r.charts)); err != nil {
				return fmt.Errorf("dashboard: bind chart provider %s: %w", code, err)
			}
		}
	}
	return nil
}

// Placements returns the seed requests declared by the manifest.
func (doc *WidgetManifestDocument) Placements() []AddWidgetRequest {
	if doc == nil {
		return nil
	}
	var out []AddWidgetRequest
	for _, widget := range doc.Widgets {
		if widget.Placement == nil {
			continue
		}
		out = append(out, AddWidgetRequest{
			DefinitionID:  widget.Definition.Code,
			AreaCode:      widget.Placement.Area,
			Position:      widget.Placement.Position,
			Roles:         append([]string(nil), widget.Placement.Roles...),
			Configuration: cloneMap(widget.Placement.Configuration),
		})
	}
	return out
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*WidgetManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader. Unknown fields are rejected.
func DecodeManifest(r io.Reader) (*WidgetManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc WidgetManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *WidgetManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		code := widget.Definition.Code
		if code == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing definition.code", idx)
		}
		if widget.Definition.Name == "" {
			return fmt.Errorf("dashboard: manifest widget %s missing definition.name", code)
		}
		if _, exists := seen[code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates widget code %s", code)
		}
		seen[code] = struct{}{}
		if entry := widget.Provider.Entry; strings.HasPrefix(entry, chartEntryPrefix) {
			if _, ok := widget.Provider.chartType(); !ok {
				return fmt.Errorf("dashboard: manifest widget %s has unsupported chart entry %q", code, entry)
			}
		}
		if widget.Placement != nil && strings.TrimSpace(widget.Placement.Area) == "" {
			return fmt.Errorf("dashboard: manifest widget %s placement is missing area", code)
		}
	}
	return nil
}

func (p ManifestProvider) chartType() (string, bool) {
	if !strings.HasPrefix(p.Entry, chartEntryPrefix) {
		return "", false
	}
	chartType := strings.ToLower(strings.TrimPrefix(p.Entry, chartEntryPrefix))
	return chartType, supportedChartType(chartType)
}

func (p ManifestProvider) isZero() bool {
	return p.Name == "" &&
		p.Summary == "" &&
		p.Entry == "" &&
		p.Package == "" &&
		p.DocsURL == "" &&
		len(p.Capabilities) == 0 &&
		p.Channel == ""
}
