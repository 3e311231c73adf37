package domain

import (
	"time"

	"github.com/google/uuid"
)

// MarketDataPoint is one OHLCV candle for a symbol. Points are
// deduplicated on (symbol, timestamp, granularity, provider).
type MarketDataPoint struct {
	Symbol      string      `json:"symbol"`
	AssetType   AssetType   `json:"assetType"`
	Timestamp   time.Time   `json:"timestamp"`
	Granularity Granularity `json:"granularity"`
	Open        float64     `json:"open"`
	High        float64     `json:"high"`
	Low         float64     `json:"low"`
	Close       float64     `json:"close"`
	Volume      float64     `json:"volume"`
	Provider    string      `json:"provider"`
}

// CandleFilter represents filter options for querying candles
type CandleFilter struct {
	Symbol      string
	Granularity Granularity
	From        *time.Time
	To          *time.Time
	Limit       int
}

// MarketOverview is a per-symbol snapshot of the latest market state
type MarketOverview struct {
	Symbol       string    `json:"symbol"`
	AssetType    AssetType `json:"assetType"`
	Price        float64   `json:"price"`
	Change24hPct float64   `json:"change24hPct"`
	Volume24h    float64   `json:"volume24h"`
	MarketCap    float64   `json:"marketCap,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DataCollectionLog records one collection run against a provider
type DataCollectionLog struct {
	ID               uuid.UUID        `json:"id"`
	Provider         string           `json:"provider"`
	AssetType        AssetType        `json:"assetType"`
	SymbolsRequested int              `json:"symbolsRequested"`
	SymbolsSucceeded int              `json:"symbolsSucceeded"`
	SymbolsFailed    int              `json:"symbolsFailed"`
	Status           CollectionStatus `json:"status"`
	ErrorDetail      string           `json:"errorDetail,omitempty"`
	DurationMs       int64            `json:"durationMs"`
	StartedAt        time.Time        `json:"startedAt"`
}

// Outcome derives the run status from its counters
func (l *DataCollectionLog) Outcome() CollectionStatus {
	switch {
	case l.SymbolsSucceeded == 0 && l.SymbolsRequested > 0:
		return CollectionStatusError
	case l.SymbolsFailed > 0:
		return CollectionStatusPartial
	default:
		return CollectionStatusSuccess
	}
}
