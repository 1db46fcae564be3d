// Package integration contains the Integration bounded context.
// This context manages connectivity to the upstream commerce platform.
//
// Key concepts:
//   - PlatformClient: Port interface for pulling resource pages from the platform
//   - QuotaParser: Strategy interface extracting rate-limit state from responses
//   - WebhookEvent: Dedup ledger entry for received webhook deliveries
//   - ClientFactory: Builds per-shop clients carrying that shop's credential
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
