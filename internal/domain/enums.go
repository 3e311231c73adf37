package domain

// AccountType classifies a portfolio account
type AccountType string

const (
	AccountTypePropFirm   AccountType = "prop_firm"
	AccountTypePersonal   AccountType = "personal_trading"
	AccountTypeRetirement AccountType = "retirement"
	AccountTypeTaxable    AccountType = "taxable"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypePropFirm, AccountTypePersonal, AccountTypeRetirement, AccountTypeTaxable:
		return true
	}
	return false
}

// PropFirm identifies the proprietary trading firm backing an account
type PropFirm string

const (
	PropFirmApex       PropFirm = "apex"
	PropFirmTakeProfit PropFirm = "takeprofit"
	PropFirmOneStep    PropFirm = "onestep"
	PropFirmTopStep    PropFirm = "topstep"
	PropFirmHyroTrader PropFirm = "hyrotrader"
	PropFirmOther      PropFirm = "other"
)

// IsValid checks if the prop firm is valid
func (f PropFirm) IsValid() bool {
	switch f {
	case PropFirmApex, PropFirmTakeProfit, PropFirmOneStep, PropFirmTopStep, PropFirmHyroTrader, PropFirmOther:
		return true
	}
	return false
}

// AssetType classifies a market data symbol
type AssetType string

const (
	AssetTypeCrypto    AssetType = "crypto"
	AssetTypeStock     AssetType = "stock"
	AssetTypeETF       AssetType = "etf"
	AssetTypeForex     AssetType = "forex"
	AssetTypeCommodity AssetType = "commodity"
)

// IsValid checks if the asset type is valid
func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeCrypto, AssetTypeStock, AssetTypeETF, AssetTypeForex, AssetTypeCommodity:
		return true
	}
	return false
}

// Granularity is the candle interval of a market data point
type Granularity string

const (
	Granularity1m Granularity = "1m"
	Granularity5m Granularity = "5m"
	Granularity1h Granularity = "1h"
	Granularity1d Granularity = "1d"
)

// IsValid checks if the granularity is valid
func (g Granularity) IsValid() bool {
	switch g {
	case Granularity1m, Granularity5m, Granularity1h, Granularity1d:
		return true
	}
	return false
}

// CollectionStatus is the outcome of a data collection run
type CollectionStatus string

const (
	CollectionStatusSuccess CollectionStatus = "success"
	CollectionStatusPartial CollectionStatus = "partial"
	CollectionStatusError   CollectionStatus = "error"
)

// IsValid checks if the collection status is valid
func (s CollectionStatus) IsValid() bool {
	switch s {
	case CollectionStatusSuccess, CollectionStatusPartial, CollectionStatusError:
		return true
	}
	return false
}

// DocType classifies an ingested document
type DocType string

const (
	DocTypeMarketAnalysis DocType = "market_analysis"
	DocTypeStrategy       DocType = "strategy"
	DocTypeNews           DocType = "news"
	DocTypeReport         DocType = "report"
)

// IsValid checks if the document type is valid
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeMarketAnalysis, DocTypeStrategy, DocTypeNews, DocTypeReport:
		return true
	}
	return false
}

// RerankMethod selects how retrieved chunks are reordered
type RerankMethod string

const (
	RerankSimilarity RerankMethod = "similarity"
	RerankRecency    RerankMethod = "recency"
	RerankHybrid     RerankMethod = "hybrid"
)

// IsValid checks if the rerank method is valid
func (m RerankMethod) IsValid() bool {
	switch m {
	case RerankSimilarity, RerankRecency, RerankHybrid:
		return true
	}
	return false
}

// RiskLevel grades a trading recommendation
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// SignalAction is a recommended trade direction
type SignalAction string

const (
	ActionBuy  SignalAction = "BUY"
	ActionSell SignalAction = "SELL"
	ActionHold SignalAction = "HOLD"
)

// IsValid checks if the signal action is valid
func (a SignalAction) IsValid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}
