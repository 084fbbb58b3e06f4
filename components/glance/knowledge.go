package glance

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const knowledgeVersion = "1"

//go:embed knowledge/default.yaml
var defaultKnowledge []byte

// ErrInvalidKnowledge is returned for knowledge bases that fail validation.
var ErrInvalidKnowledge = errors.New("glance: invalid knowledge base")

// KnowledgeBase holds the keyword buckets and reply templates. Category order
// is match order. Replies may reference snapshot values as "{name}".
type KnowledgeBase struct {
	Version    string          `yaml:"version"`
	Fallback   string          `yaml:"fallback"`
	Greeting   string          `yaml:"greeting"`
	Categories []CategoryEntry `yaml:"categories"`
}

// CategoryEntry is one keyword bucket.
type CategoryEntry struct {
	Name     Category `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Replies  []string `yaml:"replies"`
}

// DefaultKnowledgeBase decodes the embedded knowledge base.
func DefaultKnowledgeBase() (*KnowledgeBase, error) {
	return LoadKnowledgeBase(bytes.NewReader(defaultKnowledge))
}

// LoadKnowledgeFile reads a replacement knowledge base from disk.
func LoadKnowledgeFile(path string) (*KnowledgeBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("glance: open knowledge base %s: %w", path, err)
	}
	defer f.Close()
	return LoadKnowledgeBase(f)
}

// LoadKnowledgeBase decodes and validates a knowledge base. Unknown fields
// are rejected.
func LoadKnowledgeBase(r io.Reader) (*KnowledgeBase, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var kb KnowledgeBase
	if err := decoder.Decode(&kb); err != nil {
		return nil, fmt.Errorf("glance: decode knowledge base: %w", err)
	}
	if kb.Version == "" {
		kb.Version = knowledgeVersion
	}
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	for i := range kb.Categories {
		for j, kw := range kb.Categories[i].Keywords {
			kb.Categories[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	return &kb, nil
}

// Validate checks the version, the general category and every category's
// replies.
func (kb *KnowledgeBase) Validate() error {
	if kb.Version != knowledgeVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidKnowledge, kb.Version)
	}
	seen := map[Category]bool{}
	for idx, cat := range kb.Categories {
		if cat.Name == "" {
			return fmt.Errorf("%w: category at index %d has no name", ErrInvalidKnowledge, idx)
		}
		if seen[cat.Name] {
			return fmt.Errorf("%w: duplicate category %s", ErrInvalidKnowledge, cat.Name)
		}
		seen[cat.Name] = true
		if len(cat.Replies) == 0 {
			return fmt.Errorf("%w: category %s has no replies", ErrInvalidKnowledge, cat.Name)
		}
		if cat.Name != CategoryGeneral && len(cat.Keywords) == 0 {
			return fmt.Errorf("%w: category %s has no keywords", ErrInvalidKnowledge, cat.Name)
		}
		for _, kw := range cat.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: category %s has an empty keyword", ErrInvalidKnowledge, cat.Name)
			}
		}
	}
	if !seen[CategoryGeneral] {
		return fmt.Errorf("%w: missing %s category", ErrInvalidKnowledge, CategoryGeneral)
	}
	return nil
}

// Replies returns the reply templates for a category.
func (kb *KnowledgeBase) Replies(category Category) []string {
	for _, cat := range kb.Categories {
		if cat.Name == category {
			return cat.Replies
		}
	}
	return nil
}

// Classifier builds the keyword classifier for this knowledge base.
func (kb *KnowledgeBase) Classifier() *Classifier {
	buckets := make([]Bucket, 0, len(kb.Categories))
	for _, cat := range kb.Categories {
		if cat.Name == CategoryGeneral {
			continue
		}
		buckets = append(buckets, Bucket{Category: cat.Name, Keywords: cat.Keywords})
	}
	// Only the base's own categories are matched; with none, every
	// question is general.
	return &Classifier{buckets: normalizeBuckets(buckets)}
}
