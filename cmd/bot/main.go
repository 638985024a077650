package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"forgebot.ai/internal/bot/catalogs"
	"forgebot.ai/internal/bot/goal"
	"forgebot.ai/internal/bot/skills"
	"forgebot.ai/internal/bot/state"
	"forgebot.ai/internal/bot/tuning"
	"forgebot.ai/internal/journal"
	"forgebot.ai/internal/protocol"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "configs/tuning.yaml", "tuning yaml path")
		url        = flag.String("url", "", "ws url (overrides tuning)")
		name       = flag.String("name", "", "agent name (overrides tuning)")
		item       = flag.String("item", "", "goal item to obtain")
		count      = flag.Int("count", 1, "goal quantity")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	if *item == "" {
		logger.Fatalf("missing -item")
	}

	tun, err := tuning.Load(*tuningPath)
	if err != nil {
		logger.Printf("tuning: %v (using defaults)", err)
		tun.ApplyDefaults()
	}
	if *url != "" {
		tun.ServerURL = *url
	}
	if *name != "" {
		tun.AgentName = *name
	}

	cats, err := catalogs.Load(tun.ConfigDir)
	if err != nil {
		logger.Fatalf("catalogs: %v", err)
	}

	jn, err := journal.Open(tun.JournalDir)
	if err != nil {
		logger.Fatalf("journal: %v", err)
	}
	defer jn.Close()

	conn, _, err := websocket.DefaultDialer.Dial(tun.ServerURL, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	client := &wsClient{conn: conn}
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       tun.AgentName,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := client.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	st := state.New(cats)
	scope := &skills.Scope{}
	remote := skills.NewRemote(client, st)
	mgr := goal.NewManager(goal.Deps{
		Classifier: classifier{cats: cats},
		Observer:   st,
		Skills:     remote,
		Agent:      scope,
		Scope:      scope,
		Logger:     logger,
	}, goal.Config{
		BackoffDelay:     tun.BackoffDelay(),
		MoveAwayDistance: tun.MoveAwayDistance,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		scope.Interrupt()
		cancel()
		_ = conn.Close()
	}()

	go readLoop(conn, logger, st)

	driveGoal(ctx, logger, mgr, st, jn, tun, *item, *count)
}

// readLoop routes server messages into the state store.
func readLoop(conn *websocket.Conn, logger *log.Logger, st *state.Store) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME agent_id=%s tick_rate=%d seed=%d", w.AgentID, w.WorldParams.TickRateHz, w.WorldParams.Seed)
			st.ApplyWelcome(&w)

		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			st.ApplyObs(&obs)

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("server error code=%s task=%s: %s", e.Code, e.TaskID, e.Message)
		}
	}
}

// driveGoal polls the manager until inventory covers the goal or the context
// ends. One manager call is one bounded unit of work.
func driveGoal(ctx context.Context, logger *log.Logger, mgr *goal.Manager, st *state.Store, jn *journal.Journal, tun tuning.Tuning, item string, count int) {
	ticker := time.NewTicker(tun.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if st.InventoryCount(item) >= count {
			logger.Printf("goal %s x%d satisfied", item, count)
			return
		}

		rep := mgr.ExecuteNext(ctx, item, count)
		entry := journal.StepEntry{
			At:        time.Now(),
			Goal:      rep.Goal,
			Item:      rep.Item,
			Outcome:   rep.Outcome.String(),
			Count:     rep.Count,
			Gained:    rep.Gained,
			Replan:    rep.Replan,
			Depth:     mgr.Depth(item, count),
			FailScore: mgr.FailScore(item, count),
		}
		if err := jn.WriteStep(entry); err != nil {
			logger.Printf("journal: %v", err)
		}
		if rep.Outcome == goal.OutcomeInvalidGoal {
			logger.Printf("goal %s x%d: no way to make progress, giving up", item, count)
			return
		}
	}
}

// classifier adapts the loaded catalogs to the planner's lookup interface.
type classifier struct{ cats *catalogs.Catalogs }

func (c classifier) BlockSource(item string) (string, bool) { return c.cats.BlockSource(item) }
func (c classifier) SmeltInput(item string) (string, bool)  { return c.cats.SmeltInput(item) }
func (c classifier) HuntSource(item string) (string, bool)  { return c.cats.HuntSource(item) }

func (c classifier) Recipe(item string) ([]goal.Want, bool) {
	rec, ok := c.cats.Recipe(item)
	if !ok {
		return nil, false
	}
	out := make([]goal.Want, len(rec))
	for i, in := range rec {
		out[i] = goal.Want{Item: in.Item, Count: in.Count}
	}
	return out, true
}

// wsClient serializes writes to the shared websocket connection.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) SendAct(act protocol.ActMsg) error { return c.WriteJSON(act) }
