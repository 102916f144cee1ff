package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/alkime/intervals/pkg/collections"
	"gopkg.in/yaml.v3"
)

// Preset is a named set of input field values.
type Preset struct {
	Name     string `json:"name"     yaml:"name"`
	Total    string `json:"total"    yaml:"total"`
	Interval string `json:"interval" yaml:"interval"`
	Rounds   string `json:"rounds"   yaml:"rounds"`
}

// Resolve resolves the preset's fields.
func (p Preset) Resolve() (RunConfig, error) {
	return Resolve(p.Total, p.Interval, p.Rounds)
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets are used when no presets file is configured or found.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "tabata", Total: "04:00", Interval: "00:30", Rounds: "8"},
		{Name: "emom-10", Total: "10:00", Interval: "01:00", Rounds: "10"},
		{Name: "emom-20", Total: "20:00", Interval: "01:00", Rounds: "20"},
		{Name: "e2mom", Total: "30:00", Interval: "02:00", Rounds: "15"},
	}
}

// LoadPresets reads presets from a YAML file of the form:
//
//	presets:
//	  - name: tabata
//	    total: "04:00"
//	    interval: "00:30"
//	    rounds: "8"
//
// An empty path or a missing file yields DefaultPresets. Every preset must
// resolve and names must be unique.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPresets(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	return ParsePresets(data)
}

// ParsePresets decodes and validates preset YAML.
func ParsePresets(data []byte) ([]Preset, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode presets: %w", err)
	}

	seen := make(map[string]bool, len(file.Presets))

	for i, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d: name is required", i)
		}

		if seen[p.Name] {
			return nil, fmt.Errorf("preset %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		if p.Rounds == "" {
			file.Presets[i].Rounds = "1"
		}

		if _, err := file.Presets[i].Resolve(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}

	sort.SliceStable(file.Presets, func(a, b int) bool {
		return file.Presets[a].Name < file.Presets[b].Name
	})

	return file.Presets, nil
}

// Find returns the preset with the given name.
func Find(presets []Preset, name string) (Preset, bool) {
	return collections.Find(presets, func(p Preset) bool { return p.Name == name })
}
