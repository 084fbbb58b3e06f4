package retail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/seed.yaml
var fixtureFS embed.FS

const seedVersion = "1"

// Repository exposes the per-store datasets behind dashboard cards.
type Repository interface {
	Stores(ctx context.Context) ([]Store, error)
	Store(ctx context.Context, storeID string) (Store, error)
	Inventory(ctx context.Context, storeID string) ([]InventoryItem, error)
	Restock(ctx context.Context, storeID string) ([]RestockItem, error)
	Allocation(ctx context.Context, storeID string) (ProductAllocation, error)
	Anomalies(ctx context.Context, storeID string) ([]Anomaly, error)
	ChannelPerformance(ctx context.Context, storeID string) ([]ChannelPerformance, error)
	SyncStatus(ctx context.Context, storeID string) ([]ChannelSync, error)
	Campaigns(ctx context.Context, storeID string) ([]Campaign, error)
	Cohorts(ctx context.Context, storeID string) ([]Cohort, error)
	Sales(ctx context.Context, storeID string) ([]SalesPoint, error)
	Funnel(ctx context.Context, storeID string) ([]FunnelStage, error)
	TrafficSources(ctx context.Context, storeID string) ([]TrafficSource, error)
	RecentSales(ctx context.Context, storeID string) ([]RecentSale, error)
	TopProducts(ctx context.Context, storeID string) ([]ProductPerformance, error)
}

// Dataset groups every fixture owned by a store.
type Dataset struct {
	Inventory          []InventoryItem      `yaml:"inventory"`
	Restock            []RestockItem        `yaml:"restock"`
	Allocation         ProductAllocation    `yaml:"allocation"`
	Anomalies          []Anomaly            `yaml:"anomalies"`
	ChannelPerformance []ChannelPerformance `yaml:"channel_performance"`
	SyncStatus         []ChannelSync        `yaml:"sync_status"`
	Campaigns          []Campaign           `yaml:"campaigns"`
	Cohorts            []Cohort             `yaml:"cohorts"`
	Sales              []SalesPoint         `yaml:"sales"`
	Funnel             []FunnelStage        `yaml:"funnel"`
	TrafficSources     []TrafficSource      `yaml:"traffic_sources"`
	RecentSales        []RecentSale         `yaml:"recent_sales"`
	TopProducts        []ProductPerformance `yaml:"top_products"`
}

// Seed is the fixture file layout.
type Seed struct {
	Version  string             `yaml:"version"`
	Stores   []Store            `yaml:"stores"`
	Datasets map[string]Dataset `yaml:"datasets"`
}

// StaticRepository serves immutable fixtures from memory. Returned slices are
// copies so callers cannot mutate shared state.
type StaticRepository struct {
	stores   []Store
	datasets map[string]Dataset
}

var (
	defaultRepoOnce sync.Once
	defaultRepo     *StaticRepository
	defaultRepoErr  error
)

// DefaultRepository returns the repository backed by the embedded seed.
func DefaultRepository() (*StaticRepository, error) {
	defaultRepoOnce.Do(func() {
		data, err := fixtureFS.ReadFile("fixtures/seed.yaml")
		if err != nil {
			defaultRepoErr = fmt.Errorf("retail: read embedded seed: %w", err)
			return
		}
		defaultRepo, defaultRepoErr = LoadSeed(bytes.NewReader(data))
	})
	return defaultRepo, defaultRepoErr
}

// LoadSeedFile reads a seed from disk.
func LoadSeedFile(path string) (*StaticRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("retail: open seed %s: %w", path, err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes and validates a seed document.
func LoadSeed(r io.Reader) (*StaticRepository, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var seed Seed
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("retail: decode seed: %w", err)
	}
	return NewStaticRepository(seed)
}

// NewStaticRepository validates a seed and indexes it by store.
func NewStaticRepository(seed Seed) (*StaticRepository, error) {
	if seed.Version != "" && seed.Version != seedVersion {
		return nil, fmt.Errorf("retail: unsupported seed version %q", seed.Version)
	}
	if len(seed.Stores) == 0 {
		return nil, errors.New("retail: seed declares no stores")
	}
	repo := &StaticRepository{datasets: make(map[string]Dataset, len(seed.Stores))}
	seen := make(map[string]struct{}, len(seed.Stores))
	for _, store := range seed.Stores {
		store.ID = strings.TrimSpace(store.ID)
		if store.ID == "" {
			return nil, errors.New("retail: store id is required")
		}
		if _, dup := seen[store.ID]; dup {
			return nil, fmt.Errorf("retail: duplicate store %q", store.ID)
		}
		seen[store.ID] = struct{}{}
		key := store.Dataset
		if key == "" {
			key = store.ID
		}
		dataset, ok := seed.Datasets[key]
		if !ok {
			return nil, fmt.Errorf("retail: store %q references missing dataset %q", store.ID, key)
		}
		repo.stores = append(repo.stores, store)
		repo.datasets[store.ID] = dataset
	}
	return repo, nil
}

func (r *StaticRepository) dataset(ctx context.Context, storeID string) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}
	dataset, ok := r.datasets[storeID]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	return dataset, nil
}

func (r *StaticRepository) Stores(ctx context.Context) ([]Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Store(nil), r.stores...), nil
}

func (r *StaticRepository) Store(ctx context.Context, storeID string) (Store, error) {
	if _, err := r.dataset(ctx, storeID); err != nil {
		return Store{}, err
	}
	for _, store := range r.stores {
		if store.ID == storeID {
			return store, nil
		}
	}
	return Store{}, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
}

func (r *StaticRepository) Inventory(ctx context.Context, storeID string) ([]InventoryItem, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]InventoryItem(nil), ds.Inventory...), err
}

func (r *StaticRepository) Restock(ctx context.Context, storeID string) ([]RestockItem, error) {
	ds, err := r.dataset(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]RestockItem, len(ds.Restock))
	for i, item := range ds.Restock {
		item.Channels = append([]Channel(nil), item.Channels...)
		out[i] = item
	}
	return out, nil
}

func (r *StaticRepository) Allocation(ctx context.Context, storeID string) (ProductAllocation, error) {
	ds, err := r.dataset(ctx, storeID)
	if err != nil {
		return ProductAllocation{}, err
	}
	out := ds.Allocation
	out.Allocations = append([]ChannelAllocation(nil), ds.Allocation.Allocations...)
	return out, nil
}

func (r *StaticRepository) Anomalies(ctx context.Context, storeID string) ([]Anomaly, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]Anomaly(nil), ds.Anomalies...), err
}

func (r *StaticRepository) ChannelPerformance(ctx context.Context, storeID string) ([]ChannelPerformance, error) {
	ds, err := r.dataset(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelPerformance, len(ds.ChannelPerformance))
	for i, perf := range ds.ChannelPerformance {
		perf.Sparkline = append([]float64(nil), perf.Sparkline...)
		out[i] = perf
	}
	return out, nil
}

func (r *StaticRepository) SyncStatus(ctx context.Context, storeID string) ([]ChannelSync, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]ChannelSync(nil), ds.SyncStatus...), err
}

func (r *StaticRepository) Campaigns(ctx context.Context, storeID string) ([]Campaign, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]Campaign(nil), ds.Campaigns...), err
}

func (r *StaticRepository) Cohorts(ctx context.Context, storeID string) ([]Cohort, error) {
	ds, err := r.dataset(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]Cohort, len(ds.Cohorts))
	for i, cohort := range ds.Cohorts {
		cells := make([]*float64, len(cohort.Retention))
		for j, cell := range cohort.Retention {
			if cell != nil {
				v := *cell
				cells[j] = &v
			}
		}
		cohort.Retention = cells
		out[i] = cohort
	}
	return out, nil
}

func (r *StaticRepository) Sales(ctx context.Context, storeID string) ([]SalesPoint, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]SalesPoint(nil), ds.Sales...), err
}

func (r *StaticRepository) Funnel(ctx context.Context, storeID string) ([]FunnelStage, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]FunnelStage(nil), ds.Funnel...), err
}

func (r *StaticRepository) TrafficSources(ctx context.Context, storeID string) ([]TrafficSource, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]TrafficSource(nil), ds.TrafficSources...), err
}

func (r *StaticRepository) RecentSales(ctx context.Context, storeID string) ([]RecentSale, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]RecentSale(nil), ds.RecentSales...), err
}

func (r *StaticRepository) TopProducts(ctx context.Context, storeID string) ([]ProductPerformance, error) {
	ds, err := r.dataset(ctx, storeID)
	return append([]ProductPerformance(nil), ds.TopProducts...), err
}
