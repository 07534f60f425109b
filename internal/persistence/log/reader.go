package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"taproom.ai/internal/sim/world"
)

// ReadJSONL decodes every line of a .jsonl.zst file into a fresh T and hands
// it to fn. Reading stops at the first error.
func ReadJSONL[T any](path string, fn func(T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 128*1024)
	for line := 1; ; line++ {
		b, err := br.ReadBytes('\n')
		if len(b) > 0 {
			var v T
			if jerr := json.Unmarshal(b, &v); jerr != nil {
				return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, jerr)
			}
			if ferr := fn(v); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// EventFiles lists the tick log files under worldDir in time order.
func EventFiles(worldDir string) ([]string, error) {
	return sortedGlob(filepath.Join(worldDir, "events", "events-*.jsonl.zst"))
}

// LedgerFiles lists the ledger stream files under worldDir in time order.
func LedgerFiles(worldDir string) ([]string, error) {
	return sortedGlob(filepath.Join(worldDir, "ledger", "ledger-*.jsonl.zst"))
}

func sortedGlob(pattern string) ([]string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadTicks replays every tick entry under worldDir, oldest file first.
func ReadTicks(worldDir string, fn func(world.TickLogEntry) error) error {
	files, err := EventFiles(worldDir)
	if err != nil {
		return err
	}
	for _, p := range files {
		if err := ReadJSONL(p, fn); err != nil {
			return err
		}
	}
	return nil
}
