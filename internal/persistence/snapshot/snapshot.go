package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version   int    `json:"version"`
	WorldID   string `json:"world_id"`
	SessionID string `json:"session_id"`
	Tick      uint64 `json:"tick"`
}

// SnapshotV1 is the committed state of a bar at a tick boundary. Transient
// per-state scratch data is not captured; agents restart their current state.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed     int64   `json:"seed"`
	TickRate int     `json:"tick_rate_hz"`
	Clock    float64 `json:"clock"`

	Closed     bool    `json:"closed"`
	RoundOver  bool    `json:"round_over,omitempty"`
	SpawnTimer float64 `json:"spawn_timer"`
	NextNum    int     `json:"next_num"`

	Balance   int    `json:"balance"`
	Tips      int    `json:"tips"`
	LedgerSeq uint64 `json:"ledger_seq"`

	Totals map[string]int `json:"totals,omitempty"`

	Agents   []AgentV1   `json:"agents"`
	Stations []StationV1 `json:"stations"`
	Items    []ItemV1    `json:"items,omitempty"`
	Hazards  []HazardV1  `json:"hazards,omitempty"`
}

// RefV1 is an entity handle as it was in the exporting process. Importers
// remap them.
type RefV1 [2]uint32

type AgentV1 struct {
	Ref    RefV1      `json:"ref"`
	Name   string     `json:"name"`
	Pos    [2]float64 `json:"pos"`
	Facing uint8      `json:"facing"`
	Speed  float64    `json:"speed"`

	State    string `json:"state"`
	Resume   string `json:"resume"`
	ReturnTo string `json:"return_to,omitempty"`

	UseBathroom bool `json:"use_bathroom"`
	PlayJukebox bool `json:"play_jukebox"`
	CleanVomit  bool `json:"clean_vomit"`

	Order *OrderV1 `json:"order,omitempty"`
	Held  RefV1    `json:"held"`

	PatienceEnabled   bool    `json:"patience_enabled"`
	PatienceRemaining float64 `json:"patience_remaining"`
	PatienceMax       float64 `json:"patience_max"`

	SpawnTick uint64 `json:"spawn_tick"`
	AtExit    bool   `json:"at_exit"`
}

type OrderV1 struct {
	Drink             string `json:"drink"`
	State             uint8  `json:"state"`
	Remaining         int    `json:"remaining"`
	TabTotal          int    `json:"tab_total"`
	TipTotal          int    `json:"tip_total"`
	DrinksConsumed    int    `json:"drinks_consumed"`
	AlcoholicConsumed int    `json:"alcoholic_consumed"`
	BladderFill       int    `json:"bladder_fill"`
}

type StationV1 struct {
	Ref    RefV1   `json:"ref"`
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Tile   [2]int  `json:"tile"`
	Facing uint8   `json:"facing"`
	Line   []RefV1 `json:"line"`

	Slot RefV1 `json:"slot"`

	ToiletOccupied bool  `json:"toilet_occupied,omitempty"`
	ToiletUser     RefV1 `json:"toilet_user"`
	ToiletUses     int   `json:"toilet_uses,omitempty"`

	LastCustomer RefV1 `json:"last_customer"`
}

type ItemV1 struct {
	Ref         RefV1  `json:"ref"`
	Drink       string `json:"drink"`
	Ingredients uint32 `json:"ingredients"`
	Register    RefV1  `json:"register"`
	Holder      RefV1  `json:"holder"`
}

type HazardV1 struct {
	Ref  RefV1   `json:"ref"`
	Tile [2]int  `json:"tile"`
	Work float64 `json:"work"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	hb, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(hb, &h); err != nil {
		return snap, fmt.Errorf("header: %w", err)
	}
	if h.Version != Version {
		return snap, fmt.Errorf("snapshot version %d not supported", h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
