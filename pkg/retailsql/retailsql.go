// Package retailsql stores retail datasets in Postgres or SQLite. Each
// dataset is one JSON document per store.
package retailsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/retailjet/glance/components/retail"
)

// Dialect selects placeholder style and driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Dataset kinds, one row each per store.
const (
	KindInventory          = "inventory"
	KindRestock            = "restock"
	KindAllocation         = "allocation"
	KindAnomalies          = "anomalies"
	KindChannelPerformance = "channel_performance"
	KindSyncStatus         = "sync_status"
	KindCampaigns          = "campaigns"
	KindCohorts            = "cohorts"
	KindSales              = "sales"
	KindFunnel             = "funnel"
	KindTrafficSources     = "traffic_sources"
	KindRecentSales        = "recent_sales"
	KindTopProducts        = "top_products"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT '',
		marketplace TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS store_datasets (
		store_id TEXT NOT NULL REFERENCES stores(id),
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (store_id, kind)
	)`,
}

// Open connects with the driver registered for the dialect.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("retailsql: unsupported dialect %q", dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("retailsql: open %s: %w", dialect, err)
	}
	return db, nil
}

// Repository implements retail.Repository over database/sql.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

var _ retail.Repository = (*Repository)(nil)

// New wraps db. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

// Migrate creates the tables when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("retailsql: migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites "?" placeholders to "$n" for Postgres.
func (r *Repository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Import copies every store and dataset from src in one transaction.
func (r *Repository) Import(ctx context.Context, src retail.Repository) (err error) {
	stores, err := src.Stores(ctx)
	if err != nil {
		return fmt.Errorf("retailsql: list source stores: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("retailsql: begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	upsertStore := r.rebind(`INSERT INTO stores (id, name, plan, marketplace) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, plan = excluded.plan, marketplace = excluded.marketplace`)
	upsertDataset := r.rebind(`INSERT INTO store_datasets (store_id, kind, payload) VALUES (?, ?, ?)
		ON CONFLICT (store_id, kind) DO UPDATE SET payload = excluded.payload`)

	for _, store := range stores {
		if _, err = tx.ExecContext(ctx, upsertStore, store.ID, store.Name, store.Plan, store.Marketplace); err != nil {
			return fmt.Errorf("retailsql: upsert store %s: %w", store.ID, err)
		}
		var docs map[string]any
		if docs, err = exportDatasets(ctx, src, store.ID); err != nil {
			return err
		}
		for _, kind := range sortedKinds {
			payload, marshalErr := json.Marshal(docs[kind])
			if marshalErr != nil {
				err = fmt.Errorf("retailsql: encode %s/%s: %w", store.ID, kind, marshalErr)
				return err
			}
			if _, err = tx.ExecContext(ctx, upsertDataset, store.ID, kind, string(payload)); err != nil {
				return fmt.Errorf("retailsql: upsert %s/%s: %w", store.ID, kind, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("retailsql: commit import: %w", err)
	}
	return nil
}

var sortedKinds = []string{
	KindInventory, KindRestock, KindAllocation, KindAnomalies, KindChannelPerformance,
	KindSyncStatus, KindCampaigns, KindCohorts, KindSales, KindFunnel,
	KindTrafficSources, KindRecentSales, KindTopProducts,
}

func exportDatasets(ctx context.Context, src retail.Repository, storeID string) (map[string]any, error) {
	docs := make(map[string]any, len(sortedKinds))
	var errs error
	collect := func(kind string, value any, err error) {
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("retailsql: export %s/%s: %w", storeID, kind, err))
			return
		}
		docs[kind] = value
	}
	inventory, err := src.Inventory(ctx, storeID)
	collect(KindInventory, inventory, err)
	restock, err := src.Restock(ctx, storeID)
	collect(KindRestock, restock, err)
	allocation, err := src.Allocation(ctx, storeID)
	collect(KindAllocation, allocation, err)
	anomalies, err := src.Anomalies(ctx, storeID)
	collect(KindAnomalies, anomalies, err)
	performance, err := src.ChannelPerformance(ctx, storeID)
	collect(KindChannelPerformance, performance, err)
	syncStatus, err := src.SyncStatus(ctx, storeID)
	collect(KindSyncStatus, syncStatus, err)
	campaigns, err := src.Campaigns(ctx, storeID)
	collect(KindCampaigns, campaigns, err)
	cohorts, err := src.Cohorts(ctx, storeID)
	collect(KindCohorts, cohorts, err)
	sales, err := src.Sales(ctx, storeID)
	collect(KindSales, sales, err)
	funnel, err := src.Funnel(ctx, storeID)
	collect(KindFunnel, funnel, err)
	traffic, err := src.TrafficSources(ctx, storeID)
	collect(KindTrafficSources, traffic, err)
	recent, err := src.RecentSales(ctx, storeID)
	collect(KindRecentSales, recent, err)
	top, err := src.TopProducts(ctx, storeID)
	collect(KindTopProducts, top, err)
	return docs, errs
}

func (r *Repository) Stores(ctx context.Context) ([]retail.Store, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, plan, marketplace FROM stores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("retailsql: list stores: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var stores []retail.Store
	for rows.Next() {
		var s retail.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Plan, &s.Marketplace); err != nil {
			return nil, fmt.Errorf("retailsql: scan store: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retailsql: list stores: %w", err)
	}
	return stores, nil
}

func (r *Repository) Store(ctx context.Context, storeID string) (retail.Store, error) {
	var s retail.Store
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT id, name, plan, marketplace FROM stores WHERE id = ?`), storeID).
		Scan(&s.ID, &s.Name, &s.Plan, &s.Marketplace)
	if errors.Is(err, sql.ErrNoRows) {
		return retail.Store{}, fmt.Errorf("%w: %s", retail.ErrStoreNotFound, storeID)
	}
	if err != nil {
		return retail.Store{}, fmt.Errorf("retailsql: load store %s: %w", storeID, err)
	}
	return s, nil
}

// load decodes one dataset into dest. A known store without the dataset
// leaves dest untouched.
func (r *Repository) load(ctx context.Context, storeID, kind string, dest any) error {
	var (
		id      string
		payload sql.NullString
	)
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT s.id, d.payload FROM stores s
		LEFT JOIN store_datasets d ON d.store_id = s.id AND d.kind = ?
		WHERE s.id = ?`), kind, storeID).Scan(&id, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", retail.ErrStoreNotFound, storeID)
	}
	if err != nil {
		return fmt.Errorf("retailsql: load %s/%s: %w", storeID, kind, err)
	}
	if !payload.Valid || payload.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload.String), dest); err != nil {
		return fmt.Errorf("retailsql: decode %s/%s: %w", storeID, kind, err)
	}
	return nil
}

func (r *Repository) Inventory(ctx context.Context, storeID string) ([]retail.InventoryItem, error) {
	var out []retail.InventoryItem
	return out, r.load(ctx, storeID, KindInventory, &out)
}

func (r *Repository) Restock(ctx context.Context, storeID string) ([]retail.RestockItem, error) {
	var out []retail.RestockItem
	return out, r.load(ctx, storeID, KindRestock, &out)
}

func (r *Repository) Allocation(ctx context.Context, storeID string) (retail.ProductAllocation, error) {
	var out retail.ProductAllocation
	return out, r.load(ctx, storeID, KindAllocation, &out)
}

func (r *Repository) Anomalies(ctx context.Context, storeID string) ([]retail.Anomaly, error) {
	var out []retail.Anomaly
	return out, r.load(ctx, storeID, KindAnomalies, &out)
}

func (r *Repository) ChannelPerformance(ctx context.Context, storeID string) ([]retail.ChannelPerformance, error) {
	var out []retail.ChannelPerformance
	return out, r.load(ctx, storeID, KindChannelPerformance, &out)
}

func (r *Repository) SyncStatus(ctx context.Context, storeID string) ([]retail.ChannelSync, error) {
	var out []retail.ChannelSync
	return out, r.load(ctx, storeID, KindSyncStatus, &out)
}

func (r *Repository) Campaigns(ctx context.Context, storeID string) ([]retail.Campaign, error) {
	var out []retail.Campaign
	return out, r.load(ctx, storeID, KindCampaigns, &out)
}

func (r *Repository) Cohorts(ctx context.Context, storeID string) ([]retail.Cohort, error) {
	var out []retail.Cohort
	return out, r.load(ctx, storeID, KindCohorts, &out)
}

func (r *Repository) Sales(ctx context.Context, storeID string) ([]retail.SalesPoint, error) {
	var out []retail.SalesPoint
	return out, r.load(ctx, storeID, KindSales, &out)
}

func (r *Repository) Funnel(ctx context.Context, storeID string) ([]retail.FunnelStage, error) {
	var out []retail.FunnelStage
	return out, r.load(ctx, storeID, KindFunnel, &out)
}

func (r *Repository) TrafficSources(ctx context.Context, storeID string) ([]retail.TrafficSource, error) {
	var out []retail.TrafficSource
	return out, r.load(ctx, storeID, KindTrafficSources, &out)
}

func (r *Repository) RecentSales(ctx context.Context, storeID string) ([]retail.RecentSale, error) {
	var out []retail.RecentSale
	return out, r.load(ctx, storeID, KindRecentSales, &out)
}

func (r *Repository) TopProducts(ctx context.Context, storeID string) ([]retail.ProductPerformance, error) {
	var out []retail.ProductPerformance
	return out, r.load(ctx, storeID, KindTopProducts, &out)
}
