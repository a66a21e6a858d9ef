// Package irange implements the index-range value used to describe a
// single index or a strided slice [start, finish) with a step (spec §3
// "Index range", §4.3).
//
// Grounded on _examples/original_source/include/dnd/irange.hpp. The
// original overloads comparison operators to build ranges declaratively
// (`2 <= irange() < 10`); Go has no operator overloading, so the same
// algebra is exposed as chainable builder methods (spec SPEC_FULL.md
// "Supplemented features" item 1).
package irange

import "math"

// Open-ended sentinels, mirroring intptr_t min/max in the original.
const (
	NegInf = math.MinInt64
	PosInf = math.MaxInt64
)

// Range describes either a single index (Step == 0, Start is the index) or
// the strided set {Start, Start+Step, ...} bounded below Finish (Step > 0)
// or above Finish (Step < 0).
type Range struct {
	Start, Finish, Step int64
}

// All is the full index range [begin, end) — the zero-argument irange().
func All() Range {
	return Range{Start: NegInf, Finish: PosInf, Step: 1}
}

// Index builds a single-index selection; applying it removes the axis.
func Index(i int64) Range {
	return Range{Start: i, Finish: i, Step: 0}
}

// Slice builds an explicit [start, finish) range with step 1; By replaces
// the step.
func Slice(start, finish int64) Range {
	return Range{Start: start, Finish: finish, Step: 1}
}

// IsIndex reports whether r selects a single index and removes its axis.
func (r Range) IsIndex() bool { return r.Step == 0 }

// From returns a copy of r with Start replaced — "n <= irange()".
func (r Range) From(start int64) Range {
	r.Start = start
	return r
}

// To returns a copy of r with Finish replaced, exclusive — "irange() < n".
func (r Range) To(finish int64) Range {
	r.Finish = finish
	return r
}

// Through returns a copy of r with Finish replaced, inclusive of last —
// "irange() <= n".
func (r Range) Through(last int64) Range {
	r.Finish = last + 1
	return r
}

// By returns a copy of r with Step replaced — "irange() / step".
func (r Range) By(step int64) Range {
	r.Step = step
	return r
}

// Resolve computes the concrete (start, count, step) triple of this range
// against an axis of the given size, applying the rules of spec §4.3:
// out-of-range finish is clamped to size, out-of-range start yields an
// empty result, and step<0 makes finish exclusive *below* start. Negative
// indices are rejected as unsupported (spec §4.3 "Negative indices:
// undefined in this core" — this implementation picks "reject" per the
// open question in §9).
func (r Range) Resolve(size int64) (start, count, step int64, removeAxis bool, err error) {
	if r.Start < 0 && r.Start != NegInf {
		return 0, 0, 0, false, errNegativeIndex(r.Start)
	}
	if r.Finish < 0 && r.Finish != NegInf {
		return 0, 0, 0, false, errNegativeIndex(r.Finish)
	}

	if r.IsIndex() {
		if r.Start >= size {
			return 0, 0, 0, false, errOutOfRange(r.Start, size)
		}
		return r.Start, 1, 0, true, nil
	}

	step = r.Step
	if step == 0 {
		step = 1
	}

	start = r.Start
	finish := r.Finish

	if step > 0 {
		if start == NegInf {
			start = 0
		}
		if start >= size {
			return start, 0, step, false, nil
		}
		if finish == PosInf || finish > size {
			finish = size
		}
		if finish <= start {
			return start, 0, step, false, nil
		}
		count = (finish - start + step - 1) / step
		return start, count, step, false, nil
	}

	// step < 0: finish is exclusive *below* start (spec §4.3 tie-break).
	if start == PosInf {
		start = size - 1
	}
	if start < 0 || start >= size {
		return start, 0, step, false, nil
	}
	if finish == NegInf || finish < -1 {
		finish = -1
	}
	if finish >= start {
		return start, 0, step, false, nil
	}
	count = (start - finish - 1) / (-step) + 1
	return start, count, step, false, nil
}
