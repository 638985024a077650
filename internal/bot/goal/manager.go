package goal

import (
	"context"
	"log"
	"os"
	"time"
)

// Outcome says what a single ExecuteNext call did.
type Outcome int

const (
	OutcomeProgress    Outcome = iota // executed a step, inventory grew
	OutcomeNoProgress                 // executed a step, inventory did not grow
	OutcomeBackoff                    // resource unreachable, waited; caller should re-plan
	OutcomeMovedAway                  // resource unreachable twice, relocated
	OutcomeBusy                       // agent mid-action, nothing attempted
	OutcomeInvalidGoal                // no actionable step exists for the goal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProgress:
		return "PROGRESS"
	case OutcomeNoProgress:
		return "NO_PROGRESS"
	case OutcomeBackoff:
		return "BACKOFF"
	case OutcomeMovedAway:
		return "MOVED_AWAY"
	case OutcomeBusy:
		return "BUSY"
	case OutcomeInvalidGoal:
		return "INVALID_GOAL"
	}
	return "UNKNOWN"
}

// Report is the explicit result of one resolution step. Replan replaces the
// old fire-and-forget idle notification: the driver decides what to do with
// it. Failure never surfaces as an error from this package.
type Report struct {
	Outcome Outcome
	Goal    string
	Item    string // the selected leaf (equals Goal when the goal itself ran)
	Count   int
	Gained  int
	Replan  bool
}

func (r Report) OK() bool { return r.Outcome == OutcomeProgress }

// Agent is the owning agent's idle check; the manager refuses to start an
// action while another is in flight.
type Agent interface {
	Idle() bool
}

// Runner is the cancellable execution scope actions go through.
type Runner interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// Deps collects the manager's collaborators, in the style of a feature env.
type Deps struct {
	Classifier Classifier
	Observer   Observer
	Skills     Skills
	Agent      Agent
	Scope      Runner
	Logger     *log.Logger
}

type Config struct {
	BackoffDelay     time.Duration
	MoveAwayDistance int
}

func (c *Config) applyDefaults() {
	if c.BackoffDelay <= 0 {
		c.BackoffDelay = 2 * time.Second
	}
	if c.MoveAwayDistance <= 0 {
		c.MoveAwayDistance = 24
	}
}

// Manager owns the goal graph and drives one bounded resolution step per
// ExecuteNext call. Single goroutine use; serialization comes from the
// agent-idle gate, not locks.
type Manager struct {
	graph  *Graph
	obs    Observer
	skills Skills
	agent  Agent
	scope  Runner
	logger *log.Logger
	cfg    Config

	active string
	// backoff holds leaf item names that failed an unreachable-resource
	// check exactly once; the second consecutive miss triggers relocation.
	backoff map[string]bool
}

func NewManager(deps Deps, cfg Config) *Manager {
	cfg.applyDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[goal] ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Manager{
		graph:   NewGraph(deps.Classifier),
		obs:     deps.Observer,
		skills:  deps.Skills,
		agent:   deps.Agent,
		scope:   deps.Scope,
		logger:  logger,
		cfg:     cfg,
		backoff: map[string]bool{},
	}
}

// ExecuteNext advances the goal "obtain count of item" by exactly one unit of
// work, or reports why it could not. Meant to be polled by an external
// driver.
func (m *Manager) ExecuteNext(ctx context.Context, item string, count int) Report {
	n := m.graph.Node(item)
	m.active = n.Name

	step, ok := m.graph.Next(item, count, m.active, m.obs)
	if !ok {
		m.logger.Printf("goal %s x%d: no actionable step", item, count)
		return Report{Outcome: OutcomeInvalidGoal, Goal: item, Item: item, Count: count}
	}

	if blocked, what := m.unreachable(step.Node); blocked {
		step.Node.Fails++
		if m.backoff[step.Node.Name] {
			delete(m.backoff, step.Node.Name)
			m.logger.Printf("goal %s: %s %q still not nearby, relocating", item, what, step.Node.Source)
			_ = m.runScoped(ctx, func(c context.Context) error {
				return m.skills.MoveAway(c, m.cfg.MoveAwayDistance)
			})
			return Report{Outcome: OutcomeMovedAway, Goal: item, Item: step.Node.Name, Count: step.Count}
		}
		m.backoff[step.Node.Name] = true
		m.logger.Printf("goal %s: %s %q not nearby, backing off", item, what, step.Node.Source)
		m.sleep(ctx, m.cfg.BackoffDelay)
		return Report{Outcome: OutcomeBackoff, Goal: item, Item: step.Node.Name, Count: step.Count, Replan: true}
	}

	if !m.agent.Idle() {
		return Report{Outcome: OutcomeBusy, Goal: item, Item: step.Node.Name, Count: step.Count}
	}

	before := m.obs.InventoryCount(step.Node.Name)
	_ = m.runScoped(ctx, func(c context.Context) error {
		m.graph.execute(c, step.Node, step.Count, m.obs, m.skills)
		return nil
	})
	gained := m.obs.InventoryCount(step.Node.Name) - before

	rep := Report{Goal: item, Item: step.Node.Name, Count: step.Count, Gained: gained}
	if gained > 0 {
		rep.Outcome = OutcomeProgress
	} else {
		rep.Outcome = OutcomeNoProgress
	}
	m.logger.Printf("goal %s: ran %s (%s) x%d gained=%d", item, step.Node.Name, step.Node.Kind, step.Count, gained)
	return rep
}

// Depth reports how many production layers remain for the goal.
func (m *Manager) Depth(item string, count int) int {
	return m.graph.Depth(item, count, m.active, m.obs)
}

// FailScore reports the aggregate failure count over the goal's unresolved
// subtree.
func (m *Manager) FailScore(item string, count int) int {
	return m.graph.FailScore(item, count, m.active, m.obs)
}

// Reset clears the node arena and all backoff state. Call at session
// boundaries.
func (m *Manager) Reset() {
	m.graph.Reset()
	m.active = ""
	m.backoff = map[string]bool{}
}

func (m *Manager) unreachable(n *Node) (bool, string) {
	switch n.Kind {
	case KindBlock:
		if !m.obs.NearbyBlockTypes()[n.Source] {
			return true, "block"
		}
	case KindHunt:
		if !m.obs.NearbyEntityTypes()[n.Source] {
			return true, "mob"
		}
	}
	return false, ""
}

func (m *Manager) runScoped(ctx context.Context, fn func(context.Context) error) error {
	if m.scope == nil {
		return fn(ctx)
	}
	return m.scope.Run(ctx, fn)
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
