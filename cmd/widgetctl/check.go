package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/retailjet/glance/components/dashboard"
)

type checkCmd struct {
	Manifests []string `arg:"" type:"existingfile" help:"Manifest files to check."`

	out io.Writer
}

// Run decodes every manifest, checks placements target a known area and
// validates seeded configuration against the card schema.
func (cmd *checkCmd) Run(_ context.Context) error {
	if cmd.out == nil {
		cmd.out = os.Stdout
	}
	validator := dashboard.NewJSONSchemaValidator()
	var errs error
	for _, path := range cmd.Manifests {
		doc, err := dashboard.ReadManifest(path)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if err := checkPlacements(doc, validator); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(cmd.out, "ok %s (%d cards)\n", path, len(doc.Widgets))
	}
	return errs
}

func checkPlacements(doc *dashboard.WidgetManifestDocument, validator dashboard.ConfigValidator) error {
	areas := dashboard.DefaultAreaDefinitions()
	var errs error
	for _, widget := range doc.Widgets {
		if widget.Placement == nil {
			continue
		}
		code := widget.Definition.Code
		known := slices.ContainsFunc(areas, func(a dashboard.WidgetAreaDefinition) bool {
			return a.Code == widget.Placement.Area
		})
		if !known {
			errs = errors.Join(errs, fmt.Errorf("widgetctl: %s placed in unknown area %q", code, widget.Placement.Area))
			continue
		}
		if err := validator.Validate(widget.Definition, widget.Placement.Configuration); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
