package glance

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// ShortMessageRunes is the length below which a message gets a greeting.
const ShortMessageRunes = 10

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Reply is a composed assistant answer.
type Reply struct {
	Category Category
	Content  string
}

// Composer turns user text into a reply using a knowledge base.
type Composer struct {
	kb         *KnowledgeBase
	classifier *Classifier
	mu         sync.Mutex
	rnd        *rand.Rand
}

// ComposerOption customizes NewComposer.
type ComposerOption func(*Composer)

// WithRandom sets the random source used to pick reply templates.
func WithRandom(rnd *rand.Rand) ComposerOption {
	return func(c *Composer) {
		if rnd != nil {
			c.rnd = rnd
		}
	}
}

// NewComposer builds a composer. A nil knowledge base uses the embedded one.
func NewComposer(kb *KnowledgeBase, opts ...ComposerOption) (*Composer, error) {
	if kb == nil {
		var err error
		if kb, err = DefaultKnowledgeBase(); err != nil {
			return nil, err
		}
	}
	c := &Composer{
		kb:         kb,
		classifier: kb.Classifier(),
		rnd:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify exposes the composer's classifier.
func (c *Composer) Classify(text string) Category {
	return c.classifier.Classify(text)
}

// Compose classifies text and renders a random reply for its category.
// Messages shorter than ShortMessageRunes get the greeting plus a general
// reply.
func (c *Composer) Compose(text string, snap Snapshot) Reply {
	params := snap.Params()
	if utf8.RuneCountInString(text) < ShortMessageRunes {
		return Reply{
			Category: CategoryGeneral,
			Content:  c.kb.Greeting + c.pick(CategoryGeneral, params),
		}
	}
	category := c.classifier.Classify(text)
	return Reply{Category: category, Content: c.pick(category, params)}
}

// pick chooses among the templates whose placeholders can all be filled.
func (c *Composer) pick(category Category, params map[string]string) string {
	var usable []string
	for _, tpl := range c.kb.Replies(category) {
		if renderable(tpl, params) {
			usable = append(usable, tpl)
		}
	}
	if len(usable) == 0 {
		return c.kb.Fallback
	}
	c.mu.Lock()
	idx := c.rnd.IntN(len(usable))
	c.mu.Unlock()
	return render(usable[idx], params)
}

func renderable(tpl string, params map[string]string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(tpl, -1) {
		if _, ok := params[m[1]]; !ok {
			return false
		}
	}
	return true
}

func render(tpl string, params map[string]string) string {
	if len(params) == 0 {
		return tpl
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
