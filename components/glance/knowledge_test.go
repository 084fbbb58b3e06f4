package glance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKnowledgeBase(t *testing.T) {
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)
	assert.Equal(t, "Hello! ", kb.Greeting)
	assert.NotEmpty(t, kb.Fallback)

	names := make([]Category, 0, len(kb.Categories))
	for _, cat := range kb.Categories {
		names = append(names, cat.Name)
	}
	assert.Equal(t, []Category{
		CategorySales, CategoryInventory, CategoryCompetitors, CategoryAdvertising,
		CategoryListings, CategoryMetrics, CategoryGeneral,
	}, names)

	// Every category must answer even without store data.
	for _, cat := range kb.Categories {
		found := false
		for _, reply := range cat.Replies {
			if renderable(reply, nil) {
				found = true
			}
		}
		assert.True(t, found, "category %s needs a placeholder-free reply", cat.Name)
	}
}

func TestLoadKnowledgeBaseNormalizesKeywords(t *testing.T) {
	kb, err := LoadKnowledgeBase(strings.NewReader(`
categories:
  - name: returns
    keywords: [" Refund "]
    replies: ["Refunds take 5 days."]
  - name: general
    replies: ["Ask me anything."]
`))
	require.NoError(t, err)
	assert.Equal(t, "1", kb.Version)
	assert.Equal(t, []string{"refund"}, kb.Categories[0].Keywords)
	assert.Equal(t, Category("returns"), kb.Classifier().Classify("Where is my REFUND?"))
	assert.Nil(t, kb.Replies("unknown"))
}

func TestGeneralOnlyKnowledgeBaseAnswersEverything(t *testing.T) {
	kb, err := LoadKnowledgeBase(strings.NewReader(`
fallback: "FALLBACK"
categories:
  - name: general
    replies: ["I can only chat in general terms."]
`))
	require.NoError(t, err)
	assert.Equal(t, CategoryGeneral, kb.Classifier().Classify("what is my revenue this month"))

	composer, err := NewComposer(kb)
	require.NoError(t, err)
	reply := composer.Compose("what is my revenue this month", Snapshot{})
	assert.Equal(t, CategoryGeneral, reply.Category)
	assert.Equal(t, "I can only chat in general terms.", reply.Content)
}

func TestLoadKnowledgeBaseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown field": "version: \"1\"\ncolour: red\n",
		"bad version":   "version: \"2\"\ncategories:\n  - name: general\n    replies: [hi]\n",
		"no general":    "categories:\n  - name: sales\n    keywords: [sales]\n    replies: [hi]\n",
		"no replies":    "categories:\n  - name: general\n",
		"no keywords":   "categories:\n  - name: sales\n    replies: [hi]\n  - name: general\n    replies: [hi]\n",
		"duplicate":     "categories:\n  - name: general\n    replies: [hi]\n  - name: general\n    replies: [hi]\n",
		"empty keyword": "categories:\n  - name: sales\n    keywords: [\" \"]\n    replies: [hi]\n  - name: general\n    replies: [hi]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadKnowledgeBase(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
	_, err := LoadKnowledgeBase(strings.NewReader("categories:\n  - name: sales\n    keywords: [sales]\n    replies: [hi]\n"))
	assert.ErrorIs(t, err, ErrInvalidKnowledge)
}

func TestLoadKnowledgeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: general\n    replies: [hi]\n"), 0o600))
	kb, err := LoadKnowledgeFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, kb.Replies(CategoryGeneral))

	_, err = LoadKnowledgeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
