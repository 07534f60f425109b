package tuning

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_OverlaysDefaults(t *testing.T) {
	tu, err := Parse([]byte("bladder_size: 4\nupgrades: [jukebox]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tu.BladderSize != 4 {
		t.Fatalf("bladder_size=%d", tu.BladderSize)
	}
	if tu.FloorTimer != Defaults().FloorTimer {
		t.Fatalf("floor_timer lost its default: %v", tu.FloorTimer)
	}
	if !tu.HasUpgrade(UpgradeJukebox) || tu.HasUpgrade(UpgradeSpeakeasy) {
		t.Fatalf("upgrades=%v", tu.Upgrades)
	}
}

func TestParse_SchemaRejects(t *testing.T) {
	cases := []string{
		"queue_capacity: 0\n",
		"upgrades: [free_beer]\n",
		"max_dwel_time: 3\n",
		"floor_timer: fast\n",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Fatalf("expected schema error for %q", strings.TrimSpace(c))
		}
	}
}

func TestParse_Empty(t *testing.T) {
	tu, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tu.QueueCapacity != 3 || tu.JukeboxFee != 10 || tu.FloorTimer != 5 {
		t.Fatalf("defaults=%+v", tu)
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	tu, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu.TickRateHz <= 0 || tu.MaxPatience() <= 0 {
		t.Fatalf("shipped config: %+v", tu)
	}
}
