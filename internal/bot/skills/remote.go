package skills

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"forgebot.ai/internal/bot/state"
	"forgebot.ai/internal/protocol"
)

// Sender pushes an ACT message to the server. The websocket client in cmd/bot
// provides it.
type Sender interface {
	SendAct(act protocol.ActMsg) error
}

// Remote implements the planner's skill primitives by issuing server tasks
// and waiting for their terminal events. Each call blocks until the task
// finishes, fails, or the context is cancelled; failures are soft (the
// planner judges progress by inventory deltas).
type Remote struct {
	send Sender
	st   *state.Store
	seq  atomic.Uint64
}

func NewRemote(send Sender, st *state.Store) *Remote {
	return &Remote{send: send, st: st}
}

func (r *Remote) CollectBlock(ctx context.Context, blockType string, count int, exclude [][3]int) error {
	return r.issue(ctx, protocol.TaskReq{
		ID:        r.taskID("mine"),
		Type:      protocol.TaskMine,
		BlockType: blockType,
		Count:     count,
		Exclude:   exclude,
	})
}

func (r *Remote) Smelt(ctx context.Context, input string, count int) error {
	return r.issue(ctx, protocol.TaskReq{
		ID:     r.taskID("smelt"),
		Type:   protocol.TaskSmelt,
		ItemID: input,
		Count:  count,
	})
}

func (r *Remote) Craft(ctx context.Context, item string, count int) error {
	return r.issue(ctx, protocol.TaskReq{
		ID:     r.taskID("craft"),
		Type:   protocol.TaskCraft,
		ItemID: item,
		Count:  count,
	})
}

// Hunt attacks one nearby mob of the given type. The bool return feeds the
// planner's kill loop; false stops further attempts this step.
func (r *Remote) Hunt(ctx context.Context, mobType string) bool {
	err := r.issue(ctx, protocol.TaskReq{
		ID:         r.taskID("hunt"),
		Type:       protocol.TaskAttack,
		TargetType: mobType,
	})
	return err == nil
}

// MoveAway walks to a random point roughly distance blocks from the current
// position, to put new terrain in observation range.
func (r *Remote) MoveAway(ctx context.Context, distance int) error {
	if distance <= 0 {
		distance = 16
	}
	pos := r.st.SelfPos()
	dx := rand.Intn(2*distance+1) - distance
	dz := distance - abs(dx)
	if rand.Intn(2) == 0 {
		dz = -dz
	}
	return r.issue(ctx, protocol.TaskReq{
		ID:        r.taskID("move"),
		Type:      protocol.TaskMoveTo,
		Target:    [3]int{pos[0] + dx, pos[1], pos[2] + dz},
		Tolerance: 1.5,
	})
}

func (r *Remote) issue(ctx context.Context, task protocol.TaskReq) error {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            r.st.Tick(),
		AgentID:         r.st.AgentID(),
		Tasks:           []protocol.TaskReq{task},
	}
	if err := r.send.SendAct(act); err != nil {
		return err
	}
	ok, err := r.st.AwaitTask(ctx, task.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("task %s (%s) failed", task.ID, task.Type)
	}
	return nil
}

func (r *Remote) taskID(kind string) string {
	return fmt.Sprintf("K_%s_%d", kind, r.seq.Add(1))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
