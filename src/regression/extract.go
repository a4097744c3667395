package regression

import "regcheck/src/contracts"

// Value is one comparable metric read from a build.
type Value struct {
	Kind       contracts.CheckKind
	Count      int
	Percentage float64
}

// Number returns the value as a float regardless of its kind.
func (v Value) Number() float64 {
	if v.Kind.IsCoverage() {
		return v.Percentage
	}
	return float64(v.Count)
}

// Extract reads the metric for kind from build. A missing summary is reported
// with ok=false; it is never an error.
func Extract(build contracts.BuildRecord, kind contracts.CheckKind) (Value, bool) {
	if kind.IsCoverage() {
		pct, ok := build.Coverage.Percentage(kind.Metric())
		if !ok {
			return Value{}, false
		}
		return Value{Kind: kind, Percentage: pct}, true
	}

	w, ok := build.Warning(kind)
	if !ok || w.Count < 0 {
		return Value{}, false
	}
	return Value{Kind: kind, Count: w.Count}, true
}
