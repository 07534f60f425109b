package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"taproom.ai/internal/persistence/snapshot"
)

type RoundArchiveMeta struct {
	SessionID string         `json:"session_id"`
	EndTick   uint64         `json:"end_tick"`
	Clock     float64        `json:"clock"`
	Seed      int64          `json:"seed"`
	Snapshot  string         `json:"snapshot"`
	CreatedAt string         `json:"created_at"`
	Balance   int            `json:"balance"`
	Tips      int            `json:"tips"`
	Totals    map[string]int `json:"totals,omitempty"`
}

// ArchiveRoundSnapshot copies a round-end snapshot into `barDir/archives/round_<session>/`.
// Snapshots that are not the end of a round are ignored (archived=false).
func ArchiveRoundSnapshot(barDir, snapshotPath string, snap snapshot.SnapshotV1) (archivedPath string, archived bool, err error) {
	if !snap.RoundOver {
		return "", false, nil
	}
	if snap.Header.SessionID == "" {
		return "", false, fmt.Errorf("round snapshot has no session id")
	}

	archiveDir := filepath.Join(barDir, "archives", "round_"+snap.Header.SessionID)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := RoundArchiveMeta{
		SessionID: snap.Header.SessionID,
		EndTick:   snap.Header.Tick,
		Clock:     snap.Clock,
		Seed:      snap.Seed,
		Snapshot:  filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Balance:   snap.Balance,
		Tips:      snap.Tips,
		Totals:    snap.Totals,
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return dst, true, nil
}

// ReadRoundMeta loads the meta.json written next to an archived round.
func ReadRoundMeta(archiveDir string) (RoundArchiveMeta, error) {
	var meta RoundArchiveMeta
	b, err := os.ReadFile(filepath.Join(archiveDir, "meta.json"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(b, &meta)
	return meta, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
