package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// TranslationService translates UI keys for a locale.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// ResolveLocalizedValue selects the best translation for the locale and falls
// back to the supplied value. Keys match case-insensitively and "es-mx"
// falls back to "es".
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if value, ok := values[candidate]; ok && value != "" {
			return value
		}
	}
	return fallback
}

func (def *WidgetDefinition) normalizeLocalizedFields() {
	def.NameLocalized = normalizeLocaleMap(def.NameLocalized)
	def.DescriptionLocalized = normalizeLocaleMap(def.DescriptionLocalized)
}

// NameForLocale returns the display name for the locale.
func (def WidgetDefinition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(normalizeLocaleMap(def.NameLocalized), locale, def.Name)
}

// DescriptionForLocale returns the localized description if available.
func (def WidgetDefinition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(normalizeLocaleMap(def.DescriptionLocalized), locale, def.Description)
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(locale)), "_", "-")
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string, params map[string]any) string {
	if svc != nil {
		if translated, err := svc.Translate(ctx, key, locale, params); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// CatalogTranslator serves translations from a locale -> key -> text map.
// "{name}" placeholders are replaced from args.
type CatalogTranslator struct {
	catalog map[string]map[string]string
}

// NewCatalogTranslator builds a translator over a catalog.
func NewCatalogTranslator(catalog map[string]map[string]string) *CatalogTranslator {
	normalized := make(map[string]map[string]string, len(catalog))
	for locale, entries := range catalog {
		normalized[normalizeLocale(locale)] = entries
	}
	return &CatalogTranslator{catalog: normalized}
}

// LoadCatalog decodes a YAML catalog.
func LoadCatalog(r io.Reader) (*CatalogTranslator, error) {
	var catalog map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("dashboard: decode translation catalog: %w", err)
	}
	return NewCatalogTranslator(catalog), nil
}

// Translate implements TranslationService.
func (t *CatalogTranslator) Translate(_ context.Context, key, locale string, args map[string]any) (string, error) {
	for _, candidate := range localeCandidates(locale) {
		entries, ok := t.catalog[candidate]
		if !ok {
			continue
		}
		if text, ok := entries[key]; ok && text != "" {
			for name, value := range args {
				text = strings.ReplaceAll(text, "{"+name+"}", fmt.Sprint(value))
			}
			return text, nil
		}
	}
	return "", fmt.Errorf("dashboard: no translation for %q in %q", key, locale)
}
