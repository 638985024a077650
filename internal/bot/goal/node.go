package goal

import "context"

// Kind classifies how an item is obtained. Fixed at node creation.
type Kind int

const (
	KindBlock Kind = iota // mined from a nearby block
	KindSmelt             // smelted from a single precursor item
	KindHunt              // dropped by a mob
	KindCraft             // crafted from recipe inputs (default)
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "BLOCK"
	case KindSmelt:
		return "SMELT"
	case KindHunt:
		return "HUNT"
	case KindCraft:
		return "CRAFT"
	}
	return "UNKNOWN"
}

// Want is one recipe requirement: an item name and how many of it.
type Want struct {
	Item  string
	Count int
}

// Node is the resolution state for one item name. Children are stored as item
// names (Want), never as pointers; the Graph arena resolves them, so an item
// reached through several parents shares one node, one recipe expansion and
// one failure counter.
type Node struct {
	Name   string
	Kind   Kind
	Source string // block or mob type to harvest; empty for SMELT/CRAFT

	// Fails counts this node's own unsuccessful execution attempts. Child
	// failures are aggregated by Graph.FailScore, never merged in here.
	Fails int

	expanded bool
	children []Want
}

// Classifier is the item-metadata lookup the graph is built from.
type Classifier interface {
	BlockSource(item string) (string, bool)
	SmeltInput(item string) (string, bool)
	HuntSource(item string) (string, bool)
	Recipe(item string) ([]Want, bool)
}

// Inventory is the one world query node evaluation needs.
type Inventory interface {
	InventoryCount(item string) int
}

// Observer extends Inventory with the nearby-world queries the manager and
// executor use.
type Observer interface {
	Inventory
	NearbyBlockTypes() map[string]bool
	NearbyEntityTypes() map[string]bool
	BuildReservations() [][3]int
}

// Skills are the world-interaction primitives. They report failure softly;
// the executor trusts inventory deltas, not return values (Hunt's bool only
// ends the kill loop early).
type Skills interface {
	CollectBlock(ctx context.Context, blockType string, count int, exclude [][3]int) error
	Smelt(ctx context.Context, input string, count int) error
	Craft(ctx context.Context, item string, count int) error
	Hunt(ctx context.Context, mobType string) bool
	MoveAway(ctx context.Context, distance int) error
}

// Graph is the arena of goal nodes, keyed by item name. Nodes are created
// lazily on first reference and live until Reset.
type Graph struct {
	class Classifier
	nodes map[string]*Node
}

func NewGraph(class Classifier) *Graph {
	return &Graph{class: class, nodes: map[string]*Node{}}
}

// Node returns the shared node for an item, classifying it on first use.
func (g *Graph) Node(name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name, Kind: KindCraft}
	if src, ok := g.class.BlockSource(name); ok {
		n.Kind, n.Source = KindBlock, src
	} else if _, ok := g.class.SmeltInput(name); ok {
		n.Kind = KindSmelt
	} else if src, ok := g.class.HuntSource(name); ok {
		n.Kind, n.Source = KindHunt, src
	}
	g.nodes[name] = n
	return n
}

// Reset drops all nodes. Call at session boundaries; the arena has no
// eviction otherwise.
func (g *Graph) Reset() {
	g.nodes = map[string]*Node{}
}

// Size reports how many items have been classified so far.
func (g *Graph) Size() int { return len(g.nodes) }

// children expands the node's recipe, at most once per node.
func (g *Graph) children(n *Node) []Want {
	if n.expanded {
		return n.children
	}
	n.expanded = true
	switch n.Kind {
	case KindBlock, KindHunt:
	case KindSmelt:
		if input, ok := g.class.SmeltInput(n.Name); ok {
			n.children = []Want{{Item: input, Count: 1}}
		}
	case KindCraft:
		if rec, ok := g.class.Recipe(n.Name); ok {
			n.children = rec
		}
	}
	return n.children
}

func satisfied(inv Inventory, item string, count int) bool {
	return inv.InventoryCount(item) >= count
}

// done reports whether the node's quantity is already met. The active goal is
// never done: the top-level item keeps getting re-evaluated for further
// progress even when inventory nominally covers it.
func (g *Graph) done(n *Node, count int, active string, inv Inventory) bool {
	if n.Name == active {
		return false
	}
	return satisfied(inv, n.Name, count)
}

// Ready reports whether the node can be executed right now. Block and Hunt
// need no intermediates. Smelt and Craft are ready iff every direct child is
// covered by present inventory; this is a one-level check, not a promise the
// subtree resolves.
func (g *Graph) Ready(n *Node, inv Inventory) bool {
	switch n.Kind {
	case KindBlock, KindHunt:
		return true
	case KindSmelt, KindCraft:
		for _, w := range g.children(n) {
			if !satisfied(inv, w.Item, w.Count) {
				return false
			}
		}
		return true
	}
	return false
}

// Depth is 0 when done, else 1 + the max child depth (each child at its own
// required count). A ready leaf with no unmet children has depth 1.
func (g *Graph) Depth(name string, count int, active string, inv Inventory) int {
	return g.depth(g.Node(name), count, active, inv, map[string]bool{})
}

func (g *Graph) depth(n *Node, count int, active string, inv Inventory, seen map[string]bool) int {
	if g.done(n, count, active, inv) {
		return 0
	}
	// A name revisited along the current path is a classifier cycle; it
	// contributes nothing instead of recursing forever.
	seen[n.Name] = true
	deepest := 0
	for _, w := range g.children(n) {
		if seen[w.Item] {
			continue
		}
		if d := g.depth(g.Node(w.Item), w.Count, active, inv, seen); d > deepest {
			deepest = d
		}
	}
	delete(seen, n.Name)
	return 1 + deepest
}

// FailScore is 0 when done, else the node's own Fails plus the recursive sum
// over its unresolved children. Diagnostic only; nothing in the core gives up
// on a goal.
func (g *Graph) FailScore(name string, count int, active string, inv Inventory) int {
	return g.failScore(g.Node(name), count, active, inv, map[string]bool{})
}

func (g *Graph) failScore(n *Node, count int, active string, inv Inventory, seen map[string]bool) int {
	if g.done(n, count, active, inv) {
		return 0
	}
	seen[n.Name] = true
	sum := n.Fails
	for _, w := range g.children(n) {
		if seen[w.Item] {
			continue
		}
		sum += g.failScore(g.Node(w.Item), w.Count, active, inv, seen)
	}
	delete(seen, n.Name)
	return sum
}

// Step is the next actionable unit of work: a ready node and the quantity to
// produce.
type Step struct {
	Node  *Node
	Count int
}

// Next selects the next actionable leaf: nothing if done, the node itself if
// ready, otherwise a depth-first left-to-right descent into the first child
// with work remaining. Pure with respect to tree and inventory state.
func (g *Graph) Next(name string, count int, active string, inv Inventory) (Step, bool) {
	return g.next(g.Node(name), count, active, inv, map[string]bool{})
}

func (g *Graph) next(n *Node, count int, active string, inv Inventory, seen map[string]bool) (Step, bool) {
	if g.done(n, count, active, inv) {
		return Step{}, false
	}
	if g.Ready(n, inv) {
		return Step{Node: n, Count: count}, true
	}
	seen[n.Name] = true
	defer delete(seen, n.Name)
	for _, w := range g.children(n) {
		if seen[w.Item] {
			continue
		}
		if s, ok := g.next(g.Node(w.Item), w.Count, active, inv, seen); ok {
			return s, true
		}
	}
	return Step{}, false
}

// execute runs one action for the node. Not ready means one counted failure
// and no side effects. Otherwise the kind dispatches to a skill, and a flat
// inventory afterwards counts as a failure even if the skill reported none.
func (g *Graph) execute(ctx context.Context, n *Node, count int, obs Observer, sk Skills) {
	if !g.Ready(n, obs) {
		n.Fails++
		return
	}
	before := obs.InventoryCount(n.Name)
	switch n.Kind {
	case KindBlock:
		_ = sk.CollectBlock(ctx, n.Source, count, obs.BuildReservations())
	case KindSmelt:
		if kids := g.children(n); len(kids) > 0 {
			input := kids[0].Item
			q := count
			// Never queue more smelts than precursors on hand.
			if have := obs.InventoryCount(input); have < q {
				q = have
			}
			_ = sk.Smelt(ctx, input, q)
		}
	case KindHunt:
		for i := 0; i < count; i++ {
			if ctx.Err() != nil {
				break
			}
			if !sk.Hunt(ctx, n.Source) {
				break
			}
		}
	case KindCraft:
		_ = sk.Craft(ctx, n.Name, count)
	}
	if obs.InventoryCount(n.Name) <= before {
		n.Fails++
	}
}
