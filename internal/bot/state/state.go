package state

import (
	"context"
	"sync"

	"forgebot.ai/internal/bot/catalogs"
	"forgebot.ai/internal/encoding"
	"forgebot.ai/internal/protocol"
)

// Store keeps the latest observation from the server and derives the world
// queries the goal planner needs. The websocket read loop writes, the driver
// and skills read; everything is guarded by one mutex.
type Store struct {
	cats *catalogs.Catalogs

	mu      sync.Mutex
	changed chan struct{}

	agentID string
	tick    uint64
	pos     [3]int

	inventory    map[string]int
	nearbyBlocks map[string]bool
	nearbyMobs   map[string]bool
	reserved     [][3]int

	// taskDone records the terminal result of issued tasks, keyed by task id,
	// from TASK_DONE/TASK_FAILED events.
	taskDone map[string]bool
}

func New(cats *catalogs.Catalogs) *Store {
	return &Store{
		cats:         cats,
		changed:      make(chan struct{}),
		inventory:    map[string]int{},
		nearbyBlocks: map[string]bool{},
		nearbyMobs:   map[string]bool{},
		taskDone:     map[string]bool{},
	}
}

func (s *Store) ApplyWelcome(w *protocol.WelcomeMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agentID = w.AgentID
	s.bumpLocked()
}

func (s *Store) ApplyObs(o *protocol.ObsMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick = o.Tick
	s.pos = o.Self.Pos

	s.inventory = make(map[string]int, len(o.Inventory))
	for _, st := range o.Inventory {
		s.inventory[st.Item] += st.Count
	}

	s.nearbyBlocks = map[string]bool{}
	if o.Voxels.Encoding == "RLE" && o.Voxels.Data != "" {
		if ids, err := encoding.DecodeRLESet(o.Voxels.Data); err == nil {
			for id := range ids {
				if int(id) < len(s.cats.Blocks.Palette) {
					s.nearbyBlocks[s.cats.Blocks.Palette[id]] = true
				}
			}
		}
	}

	s.nearbyMobs = map[string]bool{}
	for _, e := range o.Entities {
		s.nearbyMobs[e.Type] = true
	}

	s.reserved = o.Reserved

	for _, ev := range o.Events {
		kind, _ := ev["type"].(string)
		id, _ := ev["task_id"].(string)
		if id == "" {
			continue
		}
		switch kind {
		case "TASK_DONE":
			s.taskDone[id] = true
		case "TASK_FAILED":
			s.taskDone[id] = false
		}
	}

	s.bumpLocked()
}

// bumpLocked wakes everyone waiting on the next state change.
func (s *Store) bumpLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Store) AgentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentID
}

func (s *Store) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *Store) SelfPos() [3]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// InventoryCount implements the planner's inventory query.
func (s *Store) InventoryCount(item string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory[item]
}

func (s *Store) NearbyBlockTypes() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.nearbyBlocks))
	for k := range s.nearbyBlocks {
		out[k] = true
	}
	return out
}

func (s *Store) NearbyEntityTypes() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.nearbyMobs))
	for k := range s.nearbyMobs {
		out[k] = true
	}
	return out
}

func (s *Store) BuildReservations() [][3]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][3]int, len(s.reserved))
	copy(out, s.reserved)
	return out
}

// AwaitTask blocks until the task reaches a terminal event or the context is
// cancelled. Returns whether the task succeeded.
func (s *Store) AwaitTask(ctx context.Context, taskID string) (bool, error) {
	for {
		s.mu.Lock()
		ok, terminal := s.taskDone[taskID]
		ch := s.changed
		if terminal {
			delete(s.taskDone, taskID)
		}
		s.mu.Unlock()
		if terminal {
			return ok, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ch:
		}
	}
}
