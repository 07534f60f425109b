package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/tuning"
	"taproom.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index of what happened in each round.
// The JSONL logs stay the source of truth; writes here are queued and dropped
// when the writer falls behind.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropRound    atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqRound
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	round    roundRow
	snapshot snapshotRow
}

type roundRow struct {
	SessionID string
	WorldID   string
	Seed      int64
	Started   string
	Ended     string
	Balance   int
	Tips      int
}

type snapshotRow struct {
	SessionID string
	Tick      uint64
	Path      string
	Agents    int
	Stations  int
	Hazards   int
	Balance   int
}

// Stats reports queue pressure for /v1/metrics.
type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	DropTickTotal     uint64 `json:"drop_tick_total"`
	DropRoundTotal    uint64 `json:"drop_round_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
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
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
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
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			session_id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			balance INTEGER,
			tips INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			clock REAL NOT NULL,
			transitions INTEGER NOT NULL,
			notes INTEGER NOT NULL,
			balance INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (session_id, tick)
		);`,
		`CREATE TABLE IF NOT EXISTS transitions (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent TEXT NOT NULL,
			name TEXT NOT NULL,
			from_state TEXT NOT NULL,
			to_state TEXT NOT NULL,
			forced INTEGER NOT NULL,
			PRIMARY KEY (session_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_agent ON transitions(session_id, agent, tick);`,
		`CREATE TABLE IF NOT EXISTS notes (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent TEXT NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT,
			PRIMARY KEY (session_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_kind ON notes(session_id, kind);`,
		`CREATE TABLE IF NOT EXISTS ledger (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL,
			amount INTEGER NOT NULL,
			memo TEXT,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			path TEXT NOT NULL,
			agents INTEGER NOT NULL,
			stations INTEGER NOT NULL,
			hazards INTEGER NOT NULL,
			balance INTEGER NOT NULL,
			PRIMARY KEY (session_id, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
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

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropRoundTotal:    s.dropRound.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		drops.Add(1)
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqTick, tick: entry}, &s.dropTick)
	return nil
}

// StartRound records a new session.
func (s *SQLiteIndex) StartRound(sessionID, worldID string, seed int64) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqRound, round: roundRow{
		SessionID: sessionID,
		WorldID:   worldID,
		Seed:      seed,
		Started:   time.Now().UTC().Format(time.RFC3339Nano),
	}}, &s.dropRound)
}

// EndRound stamps the final takings on a session.
func (s *SQLiteIndex) EndRound(sessionID string, balance, tips int) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqRound, round: roundRow{
		SessionID: sessionID,
		Ended:     time.Now().UTC().Format(time.RFC3339Nano),
		Balance:   balance,
		Tips:      tips,
	}}, &s.dropRound)
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: snapshotRow{
		SessionID: snap.Header.SessionID,
		Tick:      snap.Header.Tick,
		Path:      path,
		Agents:    len(snap.Agents),
		Stations:  len(snap.Stations),
		Hazards:   len(snap.Hazards),
		Balance:   snap.Balance,
	}}, &s.dropSnapshot)
}

// UpsertCatalogs stores the recipe file and the applied tuning so rounds can
// be explained later.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if configDir != "" {
		if b, err := os.ReadFile(filepath.Join(configDir, "recipes.json")); err == nil {
			rows = append(rows, kv{name: "recipes", digest: cats.Recipes.Digest, json: b})
		}
	}
	{
		// Tuning: store the values we actually apply (canonical JSON).
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(session_id,tick,clock,transitions,notes,balance,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertTransition, _ := s.db.Prepare(`INSERT OR REPLACE INTO transitions(session_id,tick,seq,agent,name,from_state,to_state,forced) VALUES(?,?,?,?,?,?,?,?)`)
	insertNote, _ := s.db.Prepare(`INSERT OR REPLACE INTO notes(session_id,tick,seq,agent,kind,detail) VALUES(?,?,?,?,?,?)`)
	insertLedger, _ := s.db.Prepare(`INSERT OR REPLACE INTO ledger(session_id,seq,tick,kind,amount,memo) VALUES(?,?,?,?,?,?)`)
	startRound, _ := s.db.Prepare(`INSERT OR IGNORE INTO rounds(session_id,world_id,seed,started_at) VALUES(?,?,?,?)`)
	endRound, _ := s.db.Prepare(`UPDATE rounds SET ended_at=?, balance=?, tips=? WHERE session_id=?`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(session_id,tick,path,agents,stations,hazards,balance) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertTransition, insertNote, insertLedger, startRound, endRound, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil || tx == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			e := r.tick
			b, _ := json.Marshal(e)
			if !exec(insertTick, e.SessionID, int64(e.Tick), e.Clock, len(e.Transitions), len(e.Notes), e.Balance, string(b)) {
				continue
			}
			for i, tr := range e.Transitions {
				if !exec(insertTransition, e.SessionID, int64(e.Tick), i, tr.Agent.String(), tr.Name, tr.From.String(), tr.To.String(), tr.Forced) {
					break
				}
			}
			for i, n := range e.Notes {
				if !exec(insertNote, e.SessionID, int64(e.Tick), i, n.Agent.String(), n.Kind, n.Detail) {
					break
				}
			}
			for _, lt := range e.Ledger {
				if !exec(insertLedger, e.SessionID, int64(lt.Seq), int64(e.Tick), string(lt.Kind), lt.Amount, lt.Memo) {
					break
				}
			}

		case reqRound:
			ro := r.round
			if ro.Ended == "" {
				exec(startRound, ro.SessionID, ro.WorldID, ro.Seed, ro.Started)
			} else {
				exec(endRound, ro.Ended, ro.Balance, ro.Tips, ro.SessionID)
			}

		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, sn.SessionID, int64(sn.Tick), sn.Path, sn.Agents, sn.Stations, sn.Hazards, sn.Balance)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
