// Package domain defines the core business entities for Forgemine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Collection: A harvestable dataset of a repository (issues,
//     pull requests, comments, reviews)
//   - Record: A flattened row destined for a collection's record file
//   - Credential: An API token with a tracked request budget
//   - PageCursor: A resumable position in a collection's page sequence
//   - CollectionState: The durable checkpoint for one collection
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
