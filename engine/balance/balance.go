// Package balance holds the tunable numbers of the farming and refining
// economy. Default returns the reference tuning; the loader package can
// override it from a Lua balance file.
package balance

import "github.com/nathoo/spiritfield/types"

// Reference tuning.
const (
	FieldCount            = 16
	GridSize              = 4
	DefaultGrowthTime     = 10.0
	PestCheckInterval     = 5.0
	PestAttackProbability = 0.01
	RefineTime            = 5.0
	RefineCost            = 2
	BaseSuccessRate       = 0.5
	ProficiencyBonus      = 0.01
	MidFlameBonus         = 0.1
	HighFlameBonus        = 0.2
	ProficiencyGain       = 5
)

// Crops lists the plantable items in display order.
var Crops = []types.Item{types.FireGrass, types.WoodGrass}

// Items lists every item the inventory tracks, in display order.
var Items = []types.Item{types.FireGrass, types.WoodGrass, types.Pill}

// Balance is the full set of economy parameters.
type Balance struct {
	GrowthTime float64                `validate:"gte=0"`
	CropGrowth map[types.Item]float64 `validate:"dive,gte=0"`

	PestCheckInterval     float64 `validate:"gt=0"`
	PestAttackProbability float64 `validate:"gte=0,lte=1"`

	RefineTime       float64 `validate:"gt=0"`
	RefineCost       int     `validate:"gt=0"`
	BaseSuccessRate  float64 `validate:"gte=0"`
	ProficiencyBonus float64 `validate:"gte=0"`
	ProficiencyGain  int     `validate:"gte=0"`

	FlameBonus map[types.FlameLevel]float64 `validate:"dive,gte=0"`
}

// Default returns the reference tuning.
func Default() *Balance {
	return &Balance{
		GrowthTime:            DefaultGrowthTime,
		CropGrowth:            map[types.Item]float64{},
		PestCheckInterval:     PestCheckInterval,
		PestAttackProbability: PestAttackProbability,
		RefineTime:            RefineTime,
		RefineCost:            RefineCost,
		BaseSuccessRate:       BaseSuccessRate,
		ProficiencyBonus:      ProficiencyBonus,
		ProficiencyGain:       ProficiencyGain,
		FlameBonus: map[types.FlameLevel]float64{
			types.FlameLow:  0,
			types.FlameMid:  MidFlameBonus,
			types.FlameHigh: HighFlameBonus,
		},
	}
}

// IsCrop reports whether item can be planted.
func IsCrop(item types.Item) bool {
	for _, c := range Crops {
		if c == item {
			return true
		}
	}
	return false
}

// IsItem reports whether item is tracked by the inventory.
func IsItem(item types.Item) bool {
	for _, it := range Items {
		if it == item {
			return true
		}
	}
	return false
}

// ParseFlame converts a persisted or typed flame name. Unknown names are
// reported with ok == false.
func ParseFlame(s string) (types.FlameLevel, bool) {
	switch types.FlameLevel(s) {
	case types.FlameLow, types.FlameMid, types.FlameHigh:
		return types.FlameLevel(s), true
	}
	return types.FlameLow, false
}

// NextFlame returns the setting after f in the Low → Mid → High → Low cycle.
func NextFlame(f types.FlameLevel) types.FlameLevel {
	switch f {
	case types.FlameLow:
		return types.FlameMid
	case types.FlameMid:
		return types.FlameHigh
	default:
		return types.FlameLow
	}
}

// GrowthFor returns the growth time of a crop, falling back to GrowthTime.
func (b *Balance) GrowthFor(crop types.Item) float64 {
	if t, ok := b.CropGrowth[crop]; ok {
		return t
	}
	return b.GrowthTime
}

// SuccessRate returns the refine success probability for the given
// proficiency and flame. The result is not clamped to 1.
func (b *Balance) SuccessRate(proficiency int, flame types.FlameLevel) float64 {
	return b.BaseSuccessRate + float64(proficiency)*b.ProficiencyBonus + b.FlameBonus[flame]
}
