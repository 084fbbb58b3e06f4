package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/retailjet/glance/components/dashboard"
)

const defaultProviderPackage = "github.com/retailjet/glance/components/dashboard"

type scaffoldCmd struct {
	Code            string   `required:"" help:"Card code (e.g. glance.widget.return_reasons)."`
	Name            string   `required:"" help:"Display name."`
	Description     string   `required:"" help:"One-line description."`
	Category        string   `default:"analytics" help:"Card category."`
	ManifestPath    string   `required:"" name:"manifest" type:"path" help:"Manifest YAML to create or update."`
	SchemaPath      string   `name:"schema" type:"path" help:"JSON schema for the card configuration."`
	Chart           string   `help:"Bind the card to the built-in chart provider (bar, line, pie, gauge)."`
	Area            string   `help:"Seed a placement in this area (e.g. glance.overview)."`
	Tag             []string `help:"Manifest tags."`
	Maintainer      []string `help:"Maintainers."`
	ProviderPackage string   `default:"github.com/retailjet/glance/components/dashboard" help:"Package holding the provider factory."`
	ProviderOut     string   `help:"Provider stub path (defaults to components/dashboard/<code>_provider.go)."`
	Overwrite       bool     `help:"Replace an existing entry or stub."`

	out io.Writer
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if cmd.out == nil {
		cmd.out = os.Stdout
	}
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("widgetctl: card code %s must contain at least one '.' segment", cmd.Code)
	}
	path, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("widgetctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(path)
	if err != nil {
		return err
	}
	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}
	entry := cmd.entry(schema)
	if err := upsertWidget(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(path, doc); err != nil {
		return err
	}
	if cmd.Chart != "" {
		fmt.Fprintf(cmd.out, "added %s to %s (chart:%s)\n", cmd.Code, path, cmd.Chart)
		return nil
	}
	stub := cmd.ProviderOut
	if stub == "" {
		stub = filepath.Join("components", "dashboard", sanitizeFileName(cmd.Code)+"_provider.go")
	}
	if err := writeProviderStub(stub, providerType(cmd.Code), cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "added %s to %s and generated %s\n", cmd.Code, path, stub)
	return nil
}

func (cmd *scaffoldCmd) entry(schema map[string]any) dashboard.ManifestWidget {
	pkg := cmd.ProviderPackage
	if pkg == "" {
		pkg = defaultProviderPackage
	}
	provider := dashboard.ManifestProvider{
		Name:         cmd.Name + " provider",
		Summary:      cmd.Description,
		Package:      pkg,
		Capabilities: []string{"json"},
	}
	if cmd.Chart != "" {
		provider.Entry = "chart:" + strings.ToLower(cmd.Chart)
		provider.Package = ""
		provider.Capabilities = []string{"html"}
	} else {
		provider.Entry = fmt.Sprintf("%s.New%s", pkg, providerType(cmd.Code))
	}
	entry := dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider:    provider,
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
	if cmd.Area != "" {
		entry.Placement = &dashboard.ManifestPlacement{Area: cmd.Area}
	}
	return entry
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("widgetctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("widgetctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func upsertWidget(doc *dashboard.WidgetManifestDocument, entry dashboard.ManifestWidget, overwrite bool) error {
	idx := slices.IndexFunc(doc.Widgets, func(w dashboard.ManifestWidget) bool {
		return w.Definition.Code == entry.Definition.Code
	})
	switch {
	case idx >= 0 && !overwrite:
		return fmt.Errorf("widgetctl: manifest already defines %s (use --overwrite to replace)", entry.Definition.Code)
	case idx >= 0:
		doc.Widgets[idx] = entry
	default:
		doc.Widgets = append(doc.Widgets, entry)
	}
	slices.SortFunc(doc.Widgets, func(a, b dashboard.ManifestWidget) int {
		return strings.Compare(a.Definition.Code, b.Definition.Code)
	})
	return nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("widgetctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("widgetctl: write manifest: %w", err)
	}
	return encoder.Close()
}

const providerTemplate = `package dashboard

import "context"

// %[1]s fetches data for %[2]s cards.
type %[1]s struct{}

// New%[1]s returns a provider for %[2]s.
func New%[1]s() Provider {
	return &%[1]s{}
}

// Fetch implements Provider.
func (p *%[1]s) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return WidgetData{
		"store_id": meta.Viewer.TenantID,
	}, nil
}
`

func writeProviderStub(path, typeName, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("widgetctl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir provider dir: %w", err)
	}
	content := fmt.Sprintf(providerTemplate, typeName, code)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("widgetctl: write provider stub: %w", err)
	}
	return nil
}

func providerType(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		slug = code
	}
	return strcase.ToPascal(slug) + "Provider"
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}
