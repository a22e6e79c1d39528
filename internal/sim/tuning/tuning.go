// Package tuning loads the run parameters from tuning.yaml.
package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

type Tuning struct {
	RunID string `yaml:"run_id"`

	TotalLocations int       `yaml:"total_locations"`
	Distribution   []float64 `yaml:"distribution"`
	Labels         []string  `yaml:"labels"`
	Threshold      float64   `yaml:"threshold"`
	Seed           int64     `yaml:"seed"`

	TickRateHz      int    `yaml:"tick_rate_hz"`
	MaxTicks        uint64 `yaml:"max_ticks"`
	StopWhenSettled bool   `yaml:"stop_when_settled"`
	Relocation      string `yaml:"relocation"`
	RequireSquare   bool   `yaml:"require_square"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
	LogEveryTicks      int `yaml:"log_every_ticks"`
}

// Defaults mirrors the classic setup: 90 000 locations, a quarter of each of
// two types, half empty, threshold 0.7 and at most one update per 10ms.
func Defaults() Tuning {
	return Tuning{
		TotalLocations:  90_000,
		Distribution:    []float64{0.25, 0.25},
		Labels:          []string{"purple", "black"},
		Threshold:       0.7,
		Seed:            1337,
		TickRateHz:      100,
		StopWhenSettled: true,
		Relocation:      "rejection",
		LogEveryTicks:   100,
	}
}

// Label names type t, falling back to a letter when unlabeled.
func (t Tuning) Label(typ int) string {
	if typ < len(t.Labels) && strings.TrimSpace(t.Labels[typ]) != "" {
		return t.Labels[typ]
	}
	if typ < 26 {
		return string(rune('A' + typ))
	}
	return fmt.Sprintf("T%d", typ)
}

// Load reads path on top of Defaults; keys missing from the file keep their
// default values.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if err := validate(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

//go:embed tuning.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "tuning.schema.json"
		if err := c.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(url)
	})
	return schema, schemaErr
}

// validate checks the YAML document against the embedded JSON schema. The
// document is round-tripped through JSON so the validator sees JSON types.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return s.Validate(v)
}
