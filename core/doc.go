// Package core provides the foundational domain types and interfaces of the
// differential engine. It defines the core abstractions for:
//
//   - Hypotheses (versioned claims with clamped confidence and a lifecycle
//     state machine)
//   - The Board (per-session append-only hypothesis ledger with lineage)
//   - Agents (pluggable generate/challenge/refine strategies)
//   - Sessions (per-run containers with phase history and a terminal result)
//   - Events (append-only engine log records)
//
// The package intentionally keeps implementation concerns (engine
// orchestration, concrete agents, stores, the HTTP boundary) out of scope,
// exposing small interfaces to enable custom backends and extensions.
package core
