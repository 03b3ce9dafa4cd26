package core

import (
	"errors"
	"testing"
)

func seed(content string, confidence float64) Seed {
	return Seed{Content: content, Confidence: &confidence}
}

func TestBoard_AddDefaultsConfidence(t *testing.T) {
	b := NewBoard()
	h := b.Add(Seed{Content: "claim"}, "analyst")
	if h.Confidence != 0.5 {
		t.Fatalf("expected default confidence 0.5, got %v", h.Confidence)
	}
	if h.Status != StatusActive {
		t.Fatalf("expected active, got %s", h.Status)
	}
}

func TestBoard_ConfidenceAlwaysClamped(t *testing.T) {
	b := NewBoard()
	h := b.Add(seed("claim", 3.0), "analyst")
	if h.Confidence != 1.0 {
		t.Fatalf("seed confidence not clamped: %v", h.Confidence)
	}

	if _, err := b.AdjustConfidence(h.ID, -5); err != nil {
		t.Fatal(err)
	}
	got, err := b.Get(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != 0 {
		t.Fatalf("negative delta not clamped to 0: %v", got.Confidence)
	}

	if _, err := b.AdjustConfidence(h.ID, 9); err != nil {
		t.Fatal(err)
	}
	got, _ = b.Get(h.ID)
	if got.Confidence != 1 {
		t.Fatalf("positive delta not clamped to 1: %v", got.Confidence)
	}
}

func TestBoard_ChallengeTransitionsStatus(t *testing.T) {
	b := NewBoard()
	h := b.Add(seed("claim", 0.6), "analyst")

	before, _ := b.Get(h.ID)
	if _, err := b.Challenge(h.ID, "skeptic", "no evidence"); err != nil {
		t.Fatal(err)
	}
	after, _ := b.Get(h.ID)

	if after.Status != StatusChallenged {
		t.Fatalf("expected challenged, got %s", after.Status)
	}
	if after.Confidence != before.Confidence {
		t.Fatal("challenge alone must not change confidence")
	}
	if len(after.Challenges) != 1 {
		t.Fatalf("expected 1 challenge, got %d", len(after.Challenges))
	}
}

func TestBoard_RefineInPlaceKeepsID(t *testing.T) {
	b := NewBoard()
	h := b.Add(seed("claim", 0.6), "analyst")
	_, _ = b.Challenge(h.ID, "skeptic", "weak")

	if err := b.Refine(h.ID, "analyst", "tightened wording"); err != nil {
		t.Fatal(err)
	}
	got, _ := b.Get(h.ID)
	if got.Status != StatusRefined {
		t.Fatalf("expected refined, got %s", got.Status)
	}
	if b.Len() != 1 {
		t.Fatalf("in-place refine must not create a new hypothesis, len=%d", b.Len())
	}
	if len(b.EvolutionGraph().Edges) != 0 {
		t.Fatal("in-place refine must not add graph edges")
	}
}

func TestBoard_EvolveExactlyOnce(t *testing.T) {
	b := NewBoard()
	h := b.Add(seed("v1", 0.6), "analyst")
	_, _ = b.Challenge(h.ID, "skeptic", "wrong premise")

	successor, err := b.Evolve(h.ID, "v2", "premise corrected")
	if err != nil {
		t.Fatal(err)
	}
	if successor.Status != StatusActive {
		t.Fatalf("successor should be active, got %s", successor.Status)
	}

	original, _ := b.Get(h.ID)
	if original.Status != StatusEvolved {
		t.Fatalf("original should be evolved, got %s", original.Status)
	}
	if original.SuccessorID != successor.ID {
		t.Fatal("original must record exactly one successor")
	}

	g := b.EvolutionGraph()
	if len(g.Edges) != 1 || g.Edges[0].From != h.ID || g.Edges[0].To != successor.ID {
		t.Fatalf("expected one lineage edge, got %+v", g.Edges)
	}
	if g.Edges[0].Reason != "premise corrected" {
		t.Fatalf("edge must carry the reason, got %q", g.Edges[0].Reason)
	}

	// A second evolve on the evolved original is rejected, never duplicated.
	if _, err := b.Evolve(h.ID, "v3", "again"); !errors.Is(err, ErrTerminalHypothesis) {
		t.Fatalf("expected ErrTerminalHypothesis, got %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("rejected evolve must not create hypotheses, len=%d", b.Len())
	}
}

func TestBoard_TerminalStatesRejectMutation(t *testing.T) {
	b := NewBoard()
	h := b.Add(seed("claim", 0.6), "analyst")
	if err := b.Accept(h.ID); err != nil {
		t.Fatal(err)
	}

	if err := b.Accept(h.ID); !errors.Is(err, ErrTerminalHypothesis) {
		t.Fatalf("second accept should be rejected, got %v", err)
	}
	if err := b.Reject(h.ID); !errors.Is(err, ErrTerminalHypothesis) {
		t.Fatalf("reject after accept should be rejected, got %v", err)
	}
	if _, err := b.Challenge(h.ID, "skeptic", "late"); !errors.Is(err, ErrTerminalHypothesis) {
		t.Fatalf("challenge after accept should be rejected, got %v", err)
	}
	if _, err := b.AdjustConfidence(h.ID, 0.1); !errors.Is(err, ErrTerminalHypothesis) {
		t.Fatalf("confidence change after accept should be rejected, got %v", err)
	}
}

func TestBoard_TopOrderingAndEligibility(t *testing.T) {
	b := NewBoard()
	first := b.Add(seed("tied first", 0.7), "a")
	second := b.Add(seed("tied second", 0.7), "a")
	high := b.Add(seed("high", 0.9), "a")
	rejected := b.Add(seed("rejected", 0.95), "a")
	_ = b.Reject(rejected.ID)
	evolvedSrc := b.Add(seed("old", 0.99), "a")
	_, _ = b.Challenge(evolvedSrc.ID, "s", "c")
	_, _ = b.Evolve(evolvedSrc.ID, "new", "r")

	top := b.Top(3)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].ID != high.ID {
		t.Fatalf("highest confidence first, got %s", top[0].Content)
	}
	// Ties break on creation order.
	if top[1].ID != first.ID || top[2].ID != second.ID {
		t.Fatalf("tie must preserve insertion order: %q then %q", top[1].Content, top[2].Content)
	}

	// Rejected and evolved hypotheses never rank.
	for _, h := range b.Top(10) {
		if h.ID == rejected.ID || h.ID == evolvedSrc.ID {
			t.Fatalf("ineligible hypothesis ranked: %s", h.Status)
		}
	}

	// Repeated calls on an unchanged board return identical ordering.
	again := b.Top(3)
	for i := range top {
		if top[i].ID != again[i].ID {
			t.Fatal("Top must be stable across calls")
		}
	}
}

func TestBoard_EvolutionGraphTruncatesContent(t *testing.T) {
	b := NewBoard()
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	b.Add(Seed{Content: string(long)}, "a")

	g := b.EvolutionGraph()
	if len(g.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(g.Nodes))
	}
	if got := len([]rune(g.Nodes[0].Content)); got > graphContentLimit+3 {
		t.Fatalf("node content not truncated: %d runes", got)
	}
}

func TestBoard_QueriesReturnCopies(t *testing.T) {
	b := NewBoard()
	h := b.Add(seed("claim", 0.5), "analyst")

	view := b.Live()[0]
	view.Content = "mutated"
	view.Metadata["k"] = "v"

	got, _ := b.Get(h.ID)
	if got.Content != "claim" || len(got.Metadata) != 0 {
		t.Fatal("board state leaked through query result")
	}
}
