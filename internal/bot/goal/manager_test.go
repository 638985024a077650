package goal

import (
	"context"
	"io"
	"log"
	"testing"
	"time"
)

type fakeAgent struct{ idle bool }

func (a *fakeAgent) Idle() bool { return a.idle }

func newTestManager(class Classifier, w *fakeWorld, agent Agent) *Manager {
	return NewManager(Deps{
		Classifier: class,
		Observer:   w,
		Skills:     w,
		Agent:      agent,
		Logger:     log.New(io.Discard, "", 0),
	}, Config{
		BackoffDelay:     time.Millisecond,
		MoveAwayDistance: 16,
	})
}

func TestExecuteNext_PlanksEndToEnd(t *testing.T) {
	// PLANK <- {LOG:1}, LOG mined from OAK_LOG which is nearby.
	class := &fakeClassifier{
		blocks:  map[string]string{"LOG": "OAK_LOG"},
		recipes: map[string][]Want{"PLANK": {{Item: "LOG", Count: 1}}},
	}
	w := newFakeWorld()
	w.nearBlocks["OAK_LOG"] = true
	w.blockDrops = map[string]string{"OAK_LOG": "LOG"}
	m := newTestManager(class, w, &fakeAgent{idle: true})

	ctx := context.Background()

	rep := m.ExecuteNext(ctx, "PLANK", 1)
	if !rep.OK() || rep.Item != "LOG" {
		t.Fatalf("first step: got %s/%s, want PROGRESS on LOG", rep.Outcome, rep.Item)
	}
	if len(w.collects) != 1 || w.collects[0] != "OAK_LOG" {
		t.Fatalf("collects: %v, want one OAK_LOG", w.collects)
	}
	if w.inv["LOG"] != 1 {
		t.Fatalf("logs after collect: got %d want 1", w.inv["LOG"])
	}

	rep = m.ExecuteNext(ctx, "PLANK", 1)
	if !rep.OK() || rep.Item != "PLANK" {
		t.Fatalf("second step: got %s/%s, want PROGRESS on PLANK", rep.Outcome, rep.Item)
	}
	if len(w.crafts) != 1 || w.crafts[0].Item != "PLANK" {
		t.Fatalf("crafts: %+v, want one PLANK", w.crafts)
	}
	if w.inv["PLANK"] < 1 {
		t.Fatalf("planks: got %d want >=1", w.inv["PLANK"])
	}
}

func TestExecuteNext_TwoPhaseBackoff(t *testing.T) {
	class := &fakeClassifier{blocks: map[string]string{"LOG": "OAK_LOG"}}
	w := newFakeWorld() // no OAK_LOG nearby
	m := newTestManager(class, w, &fakeAgent{idle: true})

	ctx := context.Background()

	// Phase one: counted failure, short wait, explicit re-plan request.
	rep := m.ExecuteNext(ctx, "LOG", 1)
	if rep.Outcome != OutcomeBackoff || !rep.Replan {
		t.Fatalf("first miss: got %s replan=%v, want BACKOFF with replan", rep.Outcome, rep.Replan)
	}
	if w.moves != 0 {
		t.Fatalf("first miss must not relocate")
	}
	if m.graph.Node("LOG").Fails != 1 {
		t.Fatalf("fails after first miss: got %d want 1", m.graph.Node("LOG").Fails)
	}
	if !m.backoff["LOG"] {
		t.Fatalf("first miss must record backoff state")
	}

	// Phase two: relocate and clear the backoff entry.
	rep = m.ExecuteNext(ctx, "LOG", 1)
	if rep.Outcome != OutcomeMovedAway {
		t.Fatalf("second miss: got %s, want MOVED_AWAY", rep.Outcome)
	}
	if w.moves != 1 {
		t.Fatalf("second miss must relocate once: moves=%d", w.moves)
	}
	if m.backoff["LOG"] {
		t.Fatalf("second miss must clear backoff state")
	}
	if m.graph.Node("LOG").Fails != 2 {
		t.Fatalf("fails after second miss: got %d want 2", m.graph.Node("LOG").Fails)
	}

	// The cycle starts over.
	rep = m.ExecuteNext(ctx, "LOG", 1)
	if rep.Outcome != OutcomeBackoff {
		t.Fatalf("third miss: got %s, want BACKOFF", rep.Outcome)
	}
	if len(w.collects) != 0 {
		t.Fatalf("unreachable resource must never be collected")
	}
}

func TestExecuteNext_HuntFeasibilityGate(t *testing.T) {
	class := &fakeClassifier{hunts: map[string]string{"MEAT": "PIG"}}
	w := newFakeWorld() // no pigs around
	m := newTestManager(class, w, &fakeAgent{idle: true})

	rep := m.ExecuteNext(context.Background(), "MEAT", 1)
	if rep.Outcome != OutcomeBackoff {
		t.Fatalf("got %s, want BACKOFF when no PIG nearby", rep.Outcome)
	}
	if w.hunts != 0 {
		t.Fatalf("no hunt may run while the mob is unreachable")
	}
}

func TestExecuteNext_BusyAgentDoesNothing(t *testing.T) {
	class := &fakeClassifier{blocks: map[string]string{"LOG": "OAK_LOG"}}
	w := newFakeWorld()
	w.nearBlocks["OAK_LOG"] = true
	w.blockDrops = map[string]string{"OAK_LOG": "LOG"}
	m := newTestManager(class, w, &fakeAgent{idle: false})

	rep := m.ExecuteNext(context.Background(), "LOG", 1)
	if rep.Outcome != OutcomeBusy {
		t.Fatalf("got %s, want BUSY", rep.Outcome)
	}
	if len(w.collects) != 0 || m.graph.Node("LOG").Fails != 0 {
		t.Fatalf("busy step must have no side effects")
	}
}

func TestExecuteNext_InvalidGoal(t *testing.T) {
	class := &fakeClassifier{
		recipes: map[string][]Want{"OUROBOROS": {{Item: "OUROBOROS", Count: 1}}},
	}
	w := newFakeWorld()
	m := newTestManager(class, w, &fakeAgent{idle: true})

	rep := m.ExecuteNext(context.Background(), "OUROBOROS", 1)
	if rep.Outcome != OutcomeInvalidGoal {
		t.Fatalf("got %s, want INVALID_GOAL", rep.Outcome)
	}
}

func TestExecuteNext_NoProgressIsCountedFailure(t *testing.T) {
	class := &fakeClassifier{blocks: map[string]string{"LOG": "OAK_LOG"}}
	w := newFakeWorld()
	w.nearBlocks["OAK_LOG"] = true // reachable, but drops nothing
	m := newTestManager(class, w, &fakeAgent{idle: true})

	rep := m.ExecuteNext(context.Background(), "LOG", 1)
	if rep.Outcome != OutcomeNoProgress || rep.Gained != 0 {
		t.Fatalf("got %s gained=%d, want NO_PROGRESS gained=0", rep.Outcome, rep.Gained)
	}
	if m.graph.Node("LOG").Fails != 1 {
		t.Fatalf("fails: got %d want 1", m.graph.Node("LOG").Fails)
	}
}

func TestExecuteNext_ActiveGoalKeepsProducing(t *testing.T) {
	// Inventory already covers the goal, but the active goal is never done,
	// so the manager still runs a step for it.
	class := &fakeClassifier{blocks: map[string]string{"LOG": "OAK_LOG"}}
	w := newFakeWorld()
	w.nearBlocks["OAK_LOG"] = true
	w.blockDrops = map[string]string{"OAK_LOG": "LOG"}
	w.inv["LOG"] = 5
	m := newTestManager(class, w, &fakeAgent{idle: true})

	rep := m.ExecuteNext(context.Background(), "LOG", 1)
	if !rep.OK() || rep.Item != "LOG" {
		t.Fatalf("got %s/%s, want PROGRESS on LOG", rep.Outcome, rep.Item)
	}
	if w.inv["LOG"] != 6 {
		t.Fatalf("logs: got %d want 6", w.inv["LOG"])
	}
}

func TestManager_DiagnosticsAndReset(t *testing.T) {
	class := toolClassifier()
	w := newFakeWorld()
	m := newTestManager(class, w, &fakeAgent{idle: true})

	if d := m.Depth("PICKAXE", 1); d != 3 {
		t.Fatalf("depth: got %d want 3", d)
	}
	m.graph.Node("IRON_ORE").Fails = 2
	if f := m.FailScore("PICKAXE", 1); f != 2 {
		t.Fatalf("fail score: got %d want 2", f)
	}

	m.backoff["IRON_ORE"] = true
	m.Reset()
	if m.graph.Size() != 0 || len(m.backoff) != 0 || m.active != "" {
		t.Fatalf("reset must clear arena, backoff and active goal")
	}
}
