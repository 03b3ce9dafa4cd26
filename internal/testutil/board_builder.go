package testutil

import "github.com/cognovo/differential/core"

// SeedBuilder provides a fluent helper for constructing hypothesis seeds in
// tests. Example:
//
//	seed := NewSeedBuilder("the cache is cold").Confidence(0.7).Domain("performance").Build()
//
// Chain only the parts you need; unset confidence defaults per the board.
type SeedBuilder struct {
	seed core.Seed
}

// NewSeedBuilder creates a builder for a seed with the given content.
func NewSeedBuilder(content string) *SeedBuilder {
	return &SeedBuilder{seed: core.Seed{Content: content}}
}

// Confidence sets the initial confidence (chainable).
func (b *SeedBuilder) Confidence(c float64) *SeedBuilder {
	b.seed.Confidence = &c
	return b
}

// Domain sets the domain tag (chainable).
func (b *SeedBuilder) Domain(d string) *SeedBuilder { b.seed.Domain = d; return b }

// Meta sets a metadata entry (chainable).
func (b *SeedBuilder) Meta(key, value string) *SeedBuilder {
	if b.seed.Metadata == nil {
		b.seed.Metadata = map[string]string{}
	}
	b.seed.Metadata[key] = value
	return b
}

// Build returns the assembled seed.
func (b *SeedBuilder) Build() core.Seed { return b.seed }

// BoardBuilder populates a real core.Board through its public API so the
// resulting fixture has consistent lifecycle state, sequence numbers and
// lineage. Mutating methods apply to the most recently added hypothesis.
// Example:
//
//	board := NewBoardBuilder().
//		Seed("the pool is exhausted", "analyst", 0.6).
//		Challenged("skeptic", "no evidence").
//		Accepted().
//		Build()
type BoardBuilder struct {
	board *core.Board
	last  string
}

// NewBoardBuilder creates a builder around an empty board.
func NewBoardBuilder() *BoardBuilder {
	return &BoardBuilder{board: core.NewBoard()}
}

// Seed adds a hypothesis with the given content, source and confidence
// (chainable).
func (b *BoardBuilder) Seed(content, source string, confidence float64) *BoardBuilder {
	return b.Add(NewSeedBuilder(content).Confidence(confidence).Build(), source)
}

// Add adds a fully specified seed from the given source (chainable).
func (b *BoardBuilder) Add(seed core.Seed, source string) *BoardBuilder {
	h := b.board.Add(seed, source)
	b.last = h.ID
	return b
}

// Challenged records a challenge against the last added hypothesis
// (chainable).
func (b *BoardBuilder) Challenged(agent, body string) *BoardBuilder {
	if _, err := b.board.Challenge(b.last, agent, body); err != nil {
		panic(err)
	}
	return b
}

// Refined records an in-place refinement on the last added hypothesis
// (chainable).
func (b *BoardBuilder) Refined(agent, notes string) *BoardBuilder {
	if err := b.board.Refine(b.last, agent, notes); err != nil {
		panic(err)
	}
	return b
}

// Evolved replaces the last added hypothesis with a successor carrying the
// new content; subsequent mutations apply to the successor (chainable).
func (b *BoardBuilder) Evolved(newContent, reason string) *BoardBuilder {
	h, err := b.board.Evolve(b.last, newContent, reason)
	if err != nil {
		panic(err)
	}
	b.last = h.ID
	return b
}

// Accepted marks the last added hypothesis accepted (chainable).
func (b *BoardBuilder) Accepted() *BoardBuilder {
	if err := b.board.Accept(b.last); err != nil {
		panic(err)
	}
	return b
}

// Rejected marks the last added hypothesis rejected (chainable).
func (b *BoardBuilder) Rejected() *BoardBuilder {
	if err := b.board.Reject(b.last); err != nil {
		panic(err)
	}
	return b
}

// LastID returns the ID of the most recently added hypothesis.
func (b *BoardBuilder) LastID() string { return b.last }

// Build returns the populated board.
func (b *BoardBuilder) Build() *core.Board { return b.board }
