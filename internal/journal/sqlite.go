package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// SQLiteIndex keeps a queryable index of step outcomes next to the zstd
// trace. Writes go through a single writer goroutine so the driver loop never
// blocks on disk.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan StepEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan StepEntry, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS steps (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	at         TEXT NOT NULL,
	goal       TEXT NOT NULL,
	item       TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	count      INTEGER NOT NULL,
	gained     INTEGER NOT NULL,
	replan     INTEGER NOT NULL,
	depth      INTEGER NOT NULL,
	fail_score INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_steps_goal ON steps(goal);
CREATE INDEX IF NOT EXISTS idx_steps_outcome ON steps(outcome);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// WriteStep enqueues a row; drops it if the index is closed or the queue is
// full (the zstd trace remains the complete record).
func (s *SQLiteIndex) WriteStep(e StepEntry) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	for e := range s.ch {
		_, err := s.db.Exec(
			`INSERT INTO steps (at, goal, item, outcome, count, gained, replan, depth, fail_score)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.At.UTC().Format("2006-01-02T15:04:05.000Z"),
			e.Goal, e.Item, e.Outcome, e.Count, e.Gained, boolInt(e.Replan), e.Depth, e.FailScore,
		)
		if err != nil {
			// Index rows are best-effort; keep draining.
			continue
		}
	}
}

// CountByOutcome reports how many indexed steps ended with the outcome.
func (s *SQLiteIndex) CountByOutcome(outcome string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM steps WHERE outcome = ?`, outcome).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
