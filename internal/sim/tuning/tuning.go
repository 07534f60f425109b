package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Upgrade names accepted in Tuning.Upgrades.
const (
	UpgradeMocktails    = "mocktails"
	UpgradeCantEvenTell = "cant_even_tell"
	UpgradeSpeakeasy    = "speakeasy"
	UpgradeJukebox      = "jukebox"
)

// Tuning is the round settings table. All durations are seconds.
type Tuning struct {
	TickRateHz         int `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks" json:"snapshot_every_ticks"`

	MaxDwellTime   float64 `yaml:"max_dwell_time" json:"max_dwell_time"`
	MaxDrinkTime   float64 `yaml:"max_drink_time" json:"max_drink_time"`
	PissTimer      float64 `yaml:"piss_timer" json:"piss_timer"`
	FloorTimer     float64 `yaml:"floor_timer" json:"floor_timer"`
	PayProcessTime float64 `yaml:"pay_process_time" json:"pay_process_time"`
	BladderSize    int     `yaml:"bladder_size" json:"bladder_size"`

	BasePatience       float64 `yaml:"base_patience" json:"base_patience"`
	PatienceMultiplier float64 `yaml:"patience_multiplier" json:"patience_multiplier"`

	DrinkCostMultiplier float64 `yaml:"drink_cost_multiplier" json:"drink_cost_multiplier"`
	MaxNumOrders        int     `yaml:"max_num_orders" json:"max_num_orders"`
	QueueCapacity       int     `yaml:"queue_capacity" json:"queue_capacity"`

	JukeboxSongTime float64 `yaml:"jukebox_song_time" json:"jukebox_song_time"`
	JukeboxFee      int     `yaml:"jukebox_fee" json:"jukebox_fee"`
	ToiletUses      int     `yaml:"toilet_uses" json:"toilet_uses"`
	VomitWork       float64 `yaml:"vomit_work" json:"vomit_work"`

	BaseSpeed float64 `yaml:"base_speed" json:"base_speed"`

	RoundLengthSeconds float64 `yaml:"round_length_seconds" json:"round_length_seconds"`
	SpawnEverySeconds  float64 `yaml:"spawn_every_seconds" json:"spawn_every_seconds"`
	MaxCustomers       int     `yaml:"max_customers" json:"max_customers"`

	UnlockedDrinks      []string `yaml:"unlocked_drinks" json:"unlocked_drinks"`
	Upgrades            []string `yaml:"upgrades" json:"upgrades"`
	SkipIngredientMatch bool     `yaml:"skip_ingredient_match" json:"skip_ingredient_match"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:          20,
		SnapshotEveryTicks:  1200,
		MaxDwellTime:        3,
		MaxDrinkTime:        3,
		PissTimer:           2.5,
		FloorTimer:          5,
		PayProcessTime:      1,
		BladderSize:         2,
		BasePatience:        20,
		PatienceMultiplier:  1,
		DrinkCostMultiplier: 1,
		MaxNumOrders:        2,
		QueueCapacity:       3,
		JukeboxSongTime:     5,
		JukeboxFee:          10,
		ToiletUses:          10,
		VomitWork:           2,
		BaseSpeed:           5,
		RoundLengthSeconds:  180,
		SpawnEverySeconds:   4,
		MaxCustomers:        12,
		UnlockedDrinks:      []string{"coke"},
	}
}

func (t Tuning) HasUpgrade(name string) bool {
	for _, u := range t.Upgrades {
		if u == name {
			return true
		}
	}
	return false
}

// MaxPatience is the patience budget of a freshly queued customer.
func (t Tuning) MaxPatience() float64 { return t.BasePatience * t.PatienceMultiplier }

//go:embed tuning.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("tuning.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Parse validates raw YAML against the embedded schema and overlays it on
// Defaults. Keys that are absent keep their default.
func Parse(raw []byte) (Tuning, error) {
	t := Defaults()

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if doc == nil {
		return t, nil
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	s, err := compiledSchema()
	if err != nil {
		return t, fmt.Errorf("tuning schema: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(raw)
}
