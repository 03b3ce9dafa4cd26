package core

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// GraphNode is a hypothesis summary in the evolution graph.
type GraphNode struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
}

// GraphEdge records one evolve call: From was superseded by To.
type GraphEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Graph is the full lineage view of a board. It grows monotonically within
// a session and is never pruned.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// graphContentLimit bounds node content in the evolution graph view.
const graphContentLimit = 80

// Board owns every hypothesis of exactly one session and enforces the
// lifecycle state machine. Creation is append-only; ids are never reused.
// It is safe for concurrent access, though during a run only the
// orchestrator mutates it.
//
// Contract:
//   - Confidence is clamped into [0,1] on every write
//   - Terminal hypotheses (evolved, accepted, rejected) reject all mutation
//   - Evolve yields exactly one active successor and one lineage edge
//   - Query results are copies; callers never observe later mutation
type Board struct {
	mu         sync.RWMutex
	hypotheses map[string]*Hypothesis
	order      []string // insertion order, ranking tiebreak
	edges      []GraphEdge
}

// NewBoard constructs an empty hypothesis board.
func NewBoard() *Board {
	return &Board{hypotheses: make(map[string]*Hypothesis)}
}

// Add creates a new active hypothesis from a seed and records its source.
// Seeds without an explicit confidence default to 0.5.
func (b *Board) Add(seed Seed, source string) Hypothesis {
	b.mu.Lock()
	defer b.mu.Unlock()

	confidence := 0.5
	if seed.Confidence != nil {
		confidence = ClampConfidence(*seed.Confidence)
	}

	now := time.Now().UTC()
	h := &Hypothesis{
		ID:         NewID(),
		Content:    seed.Content,
		Source:     source,
		Domain:     seed.Domain,
		Confidence: confidence,
		Status:     StatusActive,
		Metadata:   map[string]string{},
		Created:    now,
		Updated:    now,
		seq:        len(b.order),
	}
	for k, v := range seed.Metadata {
		h.Metadata[k] = v
	}

	b.hypotheses[h.ID] = h
	b.order = append(b.order, h.ID)
	return h.Clone()
}

// Get returns a copy of a hypothesis by id.
func (b *Board) Get(id string) (Hypothesis, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.hypotheses[id]
	if !ok {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: %w", id, ErrHypothesisNotFound)
	}
	return h.Clone(), nil
}

// Challenge attaches an objection to a live hypothesis and moves it to
// challenged. Challenges alone never change confidence; penalties are
// applied by the orchestrator once per round via AdjustConfidence.
func (b *Board) Challenge(id, agent, body string) (Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mutable(id)
	if err != nil {
		return Challenge{}, err
	}

	c := Challenge{ID: NewID(), Agent: agent, Body: body, Timestamp: time.Now().UTC()}
	h.Challenges = append(h.Challenges, c)
	h.Status = StatusChallenged
	h.Updated = c.Timestamp
	return c, nil
}

// Refine revises a challenged hypothesis in place, keeping its id and
// content, and moves it to refined.
func (b *Board) Refine(id, agent, notes string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mutable(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	h.Refinements = append(h.Refinements, Refinement{ID: NewID(), Agent: agent, Notes: notes, Timestamp: now})
	h.Status = StatusRefined
	h.Updated = now
	return nil
}

// Evolve supersedes a hypothesis with a content-revised successor. The
// original becomes terminal (evolved) with exactly one recorded successor;
// the successor starts active at the original's confidence and a lineage
// edge carrying the reason is appended. A second evolve on the same id is
// rejected, never duplicated.
func (b *Board) Evolve(id, newContent, reason string) (Hypothesis, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mutable(id)
	if err != nil {
		return Hypothesis{}, err
	}

	now := time.Now().UTC()
	successor := &Hypothesis{
		ID:         NewID(),
		Content:    newContent,
		Source:     h.Source,
		Domain:     h.Domain,
		Confidence: h.Confidence,
		Status:     StatusActive,
		Metadata:   map[string]string{},
		Created:    now,
		Updated:    now,
		seq:        len(b.order),
	}
	for k, v := range h.Metadata {
		successor.Metadata[k] = v
	}

	h.Status = StatusEvolved
	h.SuccessorID = successor.ID
	h.Updated = now

	b.hypotheses[successor.ID] = successor
	b.order = append(b.order, successor.ID)
	b.edges = append(b.edges, GraphEdge{From: h.ID, To: successor.ID, Reason: reason})
	return successor.Clone(), nil
}

// Accept moves a non-terminal hypothesis to the terminal accepted state.
func (b *Board) Accept(id string) error { return b.terminate(id, StatusAccepted) }

// Reject moves a non-terminal hypothesis to the terminal rejected state.
func (b *Board) Reject(id string) error { return b.terminate(id, StatusRejected) }

func (b *Board) terminate(id string, status Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mutable(id)
	if err != nil {
		return err
	}
	h.Status = status
	h.Updated = time.Now().UTC()
	return nil
}

// AdjustConfidence applies a bounded delta to a non-terminal hypothesis,
// clamping the result into [0,1].
func (b *Board) AdjustConfidence(id string, delta float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mutable(id)
	if err != nil {
		return 0, err
	}
	h.Confidence = ClampConfidence(h.Confidence + delta)
	h.Updated = time.Now().UTC()
	return h.Confidence, nil
}

// mutable fetches a hypothesis for mutation; caller must hold the write lock.
func (b *Board) mutable(id string) (*Hypothesis, error) {
	h, ok := b.hypotheses[id]
	if !ok {
		return nil, fmt.Errorf("hypothesis %s: %w", id, ErrHypothesisNotFound)
	}
	if h.Status.Terminal() {
		return nil, fmt.Errorf("hypothesis %s is %s: %w", id, h.Status, ErrTerminalHypothesis)
	}
	return h, nil
}

// ByStatus returns copies of all hypotheses with the given status in
// insertion order.
func (b *Board) ByStatus(status Status) []Hypothesis {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var res []Hypothesis
	for _, id := range b.order {
		if h := b.hypotheses[id]; h.Status == status {
			res = append(res, h.Clone())
		}
	}
	return res
}

// Live returns the current working set: hypotheses still standing for
// debate (active or refined), in insertion order. This is the set handed
// to agents during a challenge phase.
func (b *Board) Live() []Hypothesis {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var res []Hypothesis
	for _, id := range b.order {
		if h := b.hypotheses[id]; h.Status == StatusActive || h.Status == StatusRefined {
			res = append(res, h.Clone())
		}
	}
	return res
}

// Top returns at most n hypotheses ranked by confidence descending,
// considering only active, refined and accepted hypotheses. Ties break on
// board insertion order, so repeated calls on an unchanged board return
// identical ordering.
func (b *Board) Top(n int) []Hypothesis {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var eligible []*Hypothesis
	for _, id := range b.order {
		h := b.hypotheses[id]
		switch h.Status {
		case StatusActive, StatusRefined, StatusAccepted:
			eligible = append(eligible, h)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Confidence != eligible[j].Confidence {
			return eligible[i].Confidence > eligible[j].Confidence
		}
		return eligible[i].seq < eligible[j].seq
	})

	if n < len(eligible) {
		eligible = eligible[:n]
	}
	res := make([]Hypothesis, 0, len(eligible))
	for _, h := range eligible {
		res = append(res, h.Clone())
	}
	return res
}

// All returns copies of every hypothesis in insertion order.
func (b *Board) All() []Hypothesis {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]Hypothesis, 0, len(b.order))
	for _, id := range b.order {
		res = append(res, b.hypotheses[id].Clone())
	}
	return res
}

// EvolutionGraph returns every hypothesis as a node (content truncated) and
// every evolve call as a directed edge with its reason.
func (b *Board) EvolutionGraph() Graph {
	b.mu.RLock()
	defer b.mu.RUnlock()

	g := Graph{
		Nodes: make([]GraphNode, 0, len(b.order)),
		Edges: make([]GraphEdge, len(b.edges)),
	}
	for _, id := range b.order {
		h := b.hypotheses[id]
		g.Nodes = append(g.Nodes, GraphNode{
			ID:         h.ID,
			Content:    truncate(h.Content, graphContentLimit),
			Status:     h.Status,
			Confidence: h.Confidence,
		})
	}
	copy(g.Edges, b.edges)
	return g
}

// Counts returns the number of hypotheses per status plus a total.
func (b *Board) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := map[string]int{"total": len(b.order)}
	for _, h := range b.hypotheses {
		counts[string(h.Status)]++
	}
	return counts
}

// Len returns the total number of hypotheses ever created on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
