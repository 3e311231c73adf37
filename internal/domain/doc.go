// Package domain contains the core business entities and types for Tradeboard.
//
// This package defines:
//   - Entity types (User, PortfolioAccount, TradingAccount, Document, etc.)
//   - Value objects and enums
//   - Input/output types for service operations
//   - Domain-level validation rules
//
// # Design Philosophy
//
// Domain types are persistence-agnostic and represent the core
// business concepts independent of how they are stored or transmitted.
//
// # Key Entities
//
//   - PortfolioAccount: A brokerage or prop firm account under audit
//   - RiskProfile: Per-user risk and screening preferences
//   - TradingAccount: A prop firm account receiving trading signals
//   - MarketDataPoint: One OHLCV candle collected from upstream providers
//   - Document: Ingested market analysis content with pgvector embeddings
//   - APIKey: A sealed upstream provider credential
//
// # Naming Conventions
//
// Types ending in "Input" are used for create/update operations.
// Types ending in "Filter" are used for query operations.
package domain
