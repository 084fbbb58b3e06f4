package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfiguration is matched (errors.Is) by every schema failure.
var ErrInvalidConfiguration = errors.New("dashboard: invalid widget configuration")

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// ValidationError reports which configuration fields broke the schema.
type ValidationError struct {
	Code   string
	Fields []string
	cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dashboard: configuration for %s failed validation: %v", e.Code, e.cause)
}

// Is matches ErrInvalidConfiguration.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// Unwrap returns the underlying schema error.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// JSONSchemaValidator compiles widget schemas once per code and validates
// configuration maps against them.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the widget schema.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if config != nil {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("dashboard: marshal config for %s: %w", def.Code, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize config for %s: %w", def.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		verr := &ValidationError{Code: def.Code, cause: err}
		var schemaErr *jsonschema.ValidationError
		if errors.As(err, &schemaErr) {
			verr.Fields = failedFields(schemaErr)
		}
		return verr
	}
	return nil
}

func failedFields(err *jsonschema.ValidationError) []string {
	seen := map[string]bool{}
	var fields []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			if !seen[loc] {
				seen[loc] = true
				fields = append(fields, loc)
			}
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return fields
}

// Forget drops a compiled schema, used when a manifest redefines a code.
func (v *JSONSchemaValidator) Forget(code string) {
	v.mu.Lock()
	delete(v.compiled, code)
	v.mu.Unlock()
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}
