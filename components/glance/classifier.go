package glance

import "strings"

// Category names a keyword bucket.
type Category string

const (
	CategorySales       Category = "sales"
	CategoryInventory   Category = "inventory"
	CategoryCompetitors Category = "competitors"
	CategoryAdvertising Category = "advertising"
	CategoryListings    Category = "listings"
	CategoryMetrics     Category = "metrics"
	CategoryGeneral     Category = "general"
)

// Bucket maps keywords to a category.
type Bucket struct {
	Category Category
	Keywords []string
}

// DefaultBuckets is the built-in match order.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Category: CategorySales, Keywords: []string{"sales", "revenue", "performance"}},
		{Category: CategoryInventory, Keywords: []string{"inventory", "stock", "supply"}},
		{Category: CategoryCompetitors, Keywords: []string{"competitor", "competition"}},
		{Category: CategoryAdvertising, Keywords: []string{"ad", "ppc", "advertising"}},
		{Category: CategoryListings, Keywords: []string{"listing", "product", "content"}},
		{Category: CategoryMetrics, Keywords: []string{"metric", "primeleap", "analytics"}},
	}
}

// Classifier matches text against ordered buckets by substring. The first
// bucket with any matching keyword wins.
type Classifier struct {
	buckets []Bucket
}

// NewClassifier uses DefaultBuckets when none are given.
func NewClassifier(buckets ...Bucket) *Classifier {
	if len(buckets) == 0 {
		buckets = DefaultBuckets()
	}
	return &Classifier{buckets: normalizeBuckets(buckets)}
}

func normalizeBuckets(buckets []Bucket) []Bucket {
	normalized := make([]Bucket, len(buckets))
	for i, b := range buckets {
		keywords := make([]string, 0, len(b.Keywords))
		for _, kw := range b.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized[i] = Bucket{Category: b.Category, Keywords: keywords}
	}
	return normalized
}

// Classify returns the matching category or CategoryGeneral. Matching is
// plain substring containment, so "ad" also matches "add" or "download".
func (c *Classifier) Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, b := range c.buckets {
		for _, kw := range b.Keywords {
			if strings.Contains(lower, kw) {
				return b.Category
			}
		}
	}
	return CategoryGeneral
}
