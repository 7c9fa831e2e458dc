// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - PageSource: Fetches one page of records from the remote dataset
//   - CheckpointStore: Per-collection durable resume positions
//   - RecordWriter: Append-only record file persistence
//
// The credential pool is a core service, not a port: rotation policy is
// business logic, and its state lives entirely in memory.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
