package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tensorplex-labs/reviewsim/internal/scoring"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
)

var ErrUnknownPreset = errors.New("unknown preset")

const (
	PresetCasual       = "casual"
	PresetDedicated    = "dedicated"
	PresetProfessional = "professional"
)

// Preset is a named reviewer profile. Its Params carry no weight
// configuration; callers pick the weight system separately.
type Preset struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Params      simulator.Params `json:"params"`
}

var presets = []Preset{
	{
		Name:        PresetCasual,
		Description: "A few reviews per cycle with a modest stake.",
		Params: simulator.Params{
			BaseStake:          100,
			ProjectPool:        1000,
			ReviewsPerCycle:    3,
			TotalReviewers:     5,
			TokenHoldings:      1000,
			StartingReputation: 1.0,
			AvgReviewTime:      12,
		},
	},
	{
		Name:        PresetDedicated,
		Description: "Regular reviewer with quicker turnaround and some track record.",
		Params: simulator.Params{
			BaseStake:          250,
			ProjectPool:        1000,
			ReviewsPerCycle:    8,
			TotalReviewers:     5,
			TokenHoldings:      2500,
			StartingReputation: 1.5,
			AvgReviewTime:      6,
		},
	},
	{
		Name:        PresetProfessional,
		Description: "High volume, high stake, reviews within the hour.",
		Params: simulator.Params{
			BaseStake:          500,
			ProjectPool:        1000,
			ReviewsPerCycle:    10,
			TotalReviewers:     5,
			TokenHoldings:      5000,
			StartingReputation: 2.0,
			AvgReviewTime:      1,
		},
	},
}

// Presets returns a copy of the built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func LookupPreset(name string) (Preset, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// PresetParams resolves a preset and attaches the named weight system.
func PresetParams(preset, weightSystem string) (simulator.Params, error) {
	p, err := LookupPreset(preset)
	if err != nil {
		return simulator.Params{}, err
	}
	ws, err := scoring.LookupWeightSystem(weightSystem)
	if err != nil {
		return simulator.Params{}, err
	}
	params := p.Params
	params.WeightConfig = ws
	return params, nil
}
