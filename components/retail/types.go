package retail

import "errors"

var (
	// ErrStoreNotFound is returned when a store/tenant id is unknown.
	ErrStoreNotFound = errors.New("retail: store not found")
	// ErrUnknownChannel is returned when a channel is not part of an allocation.
	ErrUnknownChannel = errors.New("retail: unknown channel")
	// ErrInvalidAllocation is returned when a reallocation breaks stock limits.
	ErrInvalidAllocation = errors.New("retail: invalid allocation")
)

// Store is a tenant of the dashboard (a seller account).
type Store struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Plan        string `json:"plan" yaml:"plan"`
	Marketplace string `json:"marketplace" yaml:"marketplace"`
	Dataset     string `json:"-" yaml:"dataset"`
}

// Channel identifies a sales channel.
type Channel string

const (
	ChannelAmazon  Channel = "amazon"
	ChannelWalmart Channel = "walmart"
	ChannelShopify Channel = "shopify"
)

// Channels lists the supported channels in display order.
func Channels() []Channel {
	return []Channel{ChannelAmazon, ChannelWalmart, ChannelShopify}
}

// DisplayName returns the capitalized channel name.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelAmazon:
		return "Amazon"
	case ChannelWalmart:
		return "Walmart"
	case ChannelShopify:
		return "Shopify"
	}
	return string(c)
}

// ChannelPerformance holds sell-through/conversion/turnover metrics for a channel.
type ChannelPerformance struct {
	Channel             Channel   `json:"channel" yaml:"channel"`
	SellThrough         float64   `json:"sell_through" yaml:"sell_through"`
	SellThroughChange   float64   `json:"sell_through_change" yaml:"sell_through_change"`
	Conversion          float64   `json:"conversion" yaml:"conversion"`
	ConversionChange    float64   `json:"conversion_change" yaml:"conversion_change"`
	StockTurnover       float64   `json:"stock_turnover" yaml:"stock_turnover"`
	StockTurnoverChange float64   `json:"stock_turnover_change" yaml:"stock_turnover_change"`
	Sparkline           []float64 `json:"sparkline" yaml:"sparkline"`
}

// SyncStatus is the state of a cross-channel listing sync.
type SyncStatus string

const (
	SyncCompleted  SyncStatus = "completed"
	SyncInProgress SyncStatus = "in_progress"
	SyncError      SyncStatus = "error"
	SyncPending    SyncStatus = "pending"
)

// ChannelSync describes a sync job between two channels.
type ChannelSync struct {
	From     Channel    `json:"from" yaml:"from"`
	To       Channel    `json:"to" yaml:"to"`
	Status   SyncStatus `json:"status" yaml:"status"`
	Progress int        `json:"progress" yaml:"progress"`
	LastSync string     `json:"last_sync" yaml:"last_sync"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// FunnelStage is a single step of the conversion funnel.
type FunnelStage struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// TrafficSource reports visitors per acquisition source.
type TrafficSource struct {
	Source   string `json:"source" yaml:"source"`
	Visitors int    `json:"visitors" yaml:"visitors"`
}

// RecentSale is an entry of the recent sales feed.
type RecentSale struct {
	Customer string  `json:"customer" yaml:"customer"`
	Email    string  `json:"email" yaml:"email"`
	Amount   float64 `json:"amount" yaml:"amount"`
	Channel  Channel `json:"channel" yaml:"channel"`
	At       string  `json:"at" yaml:"at"`
}

// ProductPerformance summarizes how a product sells.
type ProductPerformance struct {
	Name      string  `json:"name" yaml:"name"`
	SKU       string  `json:"sku" yaml:"sku"`
	UnitsSold int     `json:"units_sold" yaml:"units_sold"`
	Revenue   float64 `json:"revenue" yaml:"revenue"`
	Margin    float64 `json:"margin" yaml:"margin"`
}
