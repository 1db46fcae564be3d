// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Persistence models contain all GORM annotations and table mappings
// 2. Mappers convert between domain entities and persistence models
// 3. Repositories use persistence models for database operations
//
// Structure:
// - webhook_event.go: Webhook dedup ledger model
// - outbox.go: Outbox pattern model for event delivery
//
// The mirror tables (shops, products, orders, insights) are mapped directly
// from their domain aggregates; only the ingestion-side tables carry separate
// persistence models.
package models
