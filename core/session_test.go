package core

import (
	"errors"
	"strings"
	"testing"
)

func TestSession_CompleteStoresResultOnce(t *testing.T) {
	s := NewSession("build a caching layer", nil)
	if s.Status() != SessionActive {
		t.Fatalf("new session should be active, got %s", s.Status())
	}

	result := &Synthesis{SessionID: s.ID}
	if err := s.Complete(result); err != nil {
		t.Fatal(err)
	}
	if s.Status() != SessionCompleted {
		t.Fatalf("expected completed, got %s", s.Status())
	}
	if s.Result() != result {
		t.Fatal("stored result lost")
	}

	if err := s.Complete(&Synthesis{}); !errors.Is(err, ErrTerminalSession) {
		t.Fatalf("second complete should be rejected, got %v", err)
	}
	if err := s.Fail(Failure{Phase: PhaseChallenge}); !errors.Is(err, ErrTerminalSession) {
		t.Fatalf("fail after complete should be rejected, got %v", err)
	}
}

func TestSession_FailCapturesPhaseAndRound(t *testing.T) {
	s := NewSession("input", map[string]string{"urgency": "high"})
	if err := s.Fail(Failure{Phase: PhaseChallenge, Round: 2, Message: "agent blew up"}); err != nil {
		t.Fatal(err)
	}
	f := s.Failure()
	if f == nil || f.Phase != PhaseChallenge || f.Round != 2 {
		t.Fatalf("failure not captured: %+v", f)
	}
	if s.Result() != nil {
		t.Fatal("failed session must not carry a result")
	}
}

func TestSession_TranscriptIncludesBoardAndFailure(t *testing.T) {
	s := NewSession("diagnose the outage", nil)
	s.Board.Add(Seed{Content: "cache invalidation storm"}, "analyst")
	_ = s.Fail(Failure{Phase: PhaseRefine, Round: 1, Message: "boom"})

	md := s.Transcript()
	for _, want := range []string{"diagnose the outage", "cache invalidation storm", "refine", "boom"} {
		if !strings.Contains(md, want) {
			t.Fatalf("transcript missing %q:\n%s", want, md)
		}
	}
}
