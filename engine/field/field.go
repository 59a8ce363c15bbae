// Package field implements a single growth slot of the farm grid.
package field

import "github.com/nathoo/spiritfield/types"

// Field is one plantable slot. The zero value is an empty field.
type Field struct {
	crop       types.Item
	growthTime float64
	elapsed    float64
	ready      bool
}

// New returns an empty field.
func New() Field {
	return Field{crop: types.Empty}
}

// Restore rebuilds a field from persisted data. A ready crop comes back
// ready; a growing crop comes back freshly planted.
func Restore(crop types.Item, growthTime float64, ready bool) Field {
	if crop == types.Empty || crop == "" {
		return New()
	}
	f := Field{crop: crop, growthTime: growthTime}
	f.ready = ready
	return f
}

// Plant sows crop unconditionally, discarding whatever was there.
func (f *Field) Plant(crop types.Item, growthTime float64) {
	f.crop = crop
	f.growthTime = growthTime
	f.elapsed = 0
	f.ready = false
}

// Update advances growth by dt seconds. It returns true only on the call
// that makes the crop ready.
func (f *Field) Update(dt float64) bool {
	if f.IsEmpty() || f.ready {
		return false
	}
	if dt > 0 {
		f.elapsed += dt
	}
	if f.elapsed >= f.growthTime {
		f.ready = true
		return true
	}
	return false
}

// Harvest takes a ready crop and empties the field. It returns false and
// leaves the field untouched if nothing is ready.
func (f *Field) Harvest() (types.Item, bool) {
	if !f.ready || f.IsEmpty() {
		return "", false
	}
	crop := f.crop
	f.Clear()
	return crop, true
}

// Clear empties the field without yielding anything.
func (f *Field) Clear() {
	*f = New()
}

func (f *Field) IsEmpty() bool       { return f.crop == types.Empty || f.crop == "" }
func (f *Field) IsReady() bool       { return f.ready }
func (f *Field) Crop() types.Item    { return f.crop }
func (f *Field) GrowthTime() float64 { return f.growthTime }
func (f *Field) Elapsed() float64    { return f.elapsed }

// Progress returns growth completion in [0, 1].
func (f *Field) Progress() float64 {
	switch {
	case f.IsEmpty():
		return 0
	case f.ready || f.growthTime <= 0:
		return 1
	}
	p := f.elapsed / f.growthTime
	if p > 1 {
		return 1
	}
	return p
}
