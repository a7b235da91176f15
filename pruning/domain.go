package pruning

import (
	"sort"
)

// Bound is one end of a range. An unbounded end extends to the edge of
// the value space; an open end excludes its value.
type Bound struct {
	value     Value
	unbounded bool
	open      bool
}

// Above returns an open lower bound (values strictly greater than v)
func Above(v Value) Bound { return Bound{value: v, open: true} }

// AtLeast returns a closed lower bound
func AtLeast(v Value) Bound { return Bound{value: v} }

// Below returns an open upper bound (values strictly less than v)
func Below(v Value) Bound { return Bound{value: v, open: true} }

// AtMost returns a closed upper bound
func AtMost(v Value) Bound { return Bound{value: v} }

// Unbounded returns a bound extending to the edge of the value space
func Unbounded() Bound { return Bound{unbounded: true} }

// valueRange is a contiguous run of values between two bounds
type valueRange struct {
	lo Bound
	hi Bound
}

func (r valueRange) empty() bool {
	if r.lo.unbounded || r.hi.unbounded {
		return false
	}
	c := r.lo.value.Compare(r.hi.value)
	if c != 0 {
		return c > 0
	}
	return r.lo.open || r.hi.open
}

// maxLo picks the tighter of two lower bounds
func maxLo(a, b Bound) Bound {
	if a.unbounded {
		return b
	}
	if b.unbounded {
		return a
	}
	c := a.value.Compare(b.value)
	if c > 0 || (c == 0 && a.open) {
		return a
	}
	return b
}

// minHi picks the tighter of two upper bounds
func minHi(a, b Bound) Bound {
	if a.unbounded {
		return b
	}
	if b.unbounded {
		return a
	}
	c := a.value.Compare(b.value)
	if c < 0 || (c == 0 && a.open) {
		return a
	}
	return b
}

// loLess orders lower bounds: a looser lower bound comes first
func loLess(a, b Bound) bool {
	if a.unbounded {
		return !b.unbounded
	}
	if b.unbounded {
		return false
	}
	c := a.value.Compare(b.value)
	if c != 0 {
		return c < 0
	}
	return !a.open && b.open
}

// Domain is the set of values one column may take, plus an independent
// "may contain null" flag. Domains are immutable and safe to share.
// The zero ranges slice with all=false and nullAllowed=false is the
// unsatisfiable none domain.
type Domain struct {
	all         bool
	nullAllowed bool
	ranges      []valueRange // sorted, pairwise disjoint; ignored when all
}

// All returns the unconstrained domain, nulls included
func All() *Domain {
	return &Domain{all: true, nullAllowed: true}
}

// AllValues returns the domain of every non-null value, with the null
// flag supplied by the caller
func AllValues(nullAllowed bool) *Domain {
	return &Domain{all: true, nullAllowed: nullAllowed}
}

// None returns the empty, unsatisfiable domain
func None() *Domain {
	return &Domain{}
}

// OnlyNull returns the domain containing exactly the absent value
func OnlyNull() *Domain {
	return &Domain{nullAllowed: true}
}

// RangeDomain returns the domain of values between two bounds
func RangeDomain(lo, hi Bound, nullAllowed bool) *Domain {
	r := valueRange{lo: lo, hi: hi}
	if r.empty() {
		return &Domain{nullAllowed: nullAllowed}
	}
	return &Domain{nullAllowed: nullAllowed, ranges: []valueRange{r}}
}

// ClosedRange returns the domain of the closed interval [min, max]
func ClosedRange(min, max Value, nullAllowed bool) *Domain {
	return RangeDomain(AtLeast(min), AtMost(max), nullAllowed)
}

// SingleValue returns the domain containing exactly one value
func SingleValue(v Value, nullAllowed bool) *Domain {
	return ClosedRange(v, v, nullAllowed)
}

// UnionValues returns the domain containing exactly the given discrete
// values
func UnionValues(values []Value, nullAllowed bool) *Domain {
	if len(values) == 0 {
		return &Domain{nullAllowed: nullAllowed}
	}
	sorted := make([]Value, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	ranges := make([]valueRange, 0, len(sorted))
	for i, v := range sorted {
		if i > 0 && v.Compare(sorted[i-1]) == 0 {
			continue
		}
		ranges = append(ranges, valueRange{lo: AtLeast(v), hi: AtMost(v)})
	}
	return &Domain{nullAllowed: nullAllowed, ranges: ranges}
}

// IsNone reports whether the domain is unsatisfiable
func (d *Domain) IsNone() bool {
	return !d.all && !d.nullAllowed && len(d.ranges) == 0
}

// IsAll reports whether the domain is fully unconstrained
func (d *Domain) IsAll() bool {
	return d.all && d.nullAllowed
}

// IsOnlyNull reports whether the domain admits the absent value and
// nothing else
func (d *Domain) IsOnlyNull() bool {
	return !d.all && d.nullAllowed && len(d.ranges) == 0
}

// MayContainNull reports whether the domain admits the absent value
func (d *Domain) MayContainNull() bool {
	return d.nullAllowed
}

// ContainsValue reports whether the domain admits the given non-null
// value
func (d *Domain) ContainsValue(v Value) bool {
	if d.all {
		return true
	}
	for _, r := range d.ranges {
		lo := maxLo(r.lo, AtLeast(v))
		hi := minHi(r.hi, AtMost(v))
		if !(valueRange{lo: lo, hi: hi}).empty() {
			return true
		}
	}
	return false
}

// Intersect returns the domain of values admitted by both inputs
func (d *Domain) Intersect(o *Domain) *Domain {
	nullAllowed := d.nullAllowed && o.nullAllowed
	if d.all && o.all {
		return &Domain{all: true, nullAllowed: nullAllowed}
	}
	if d.all {
		return &Domain{nullAllowed: nullAllowed, ranges: o.ranges}
	}
	if o.all {
		return &Domain{nullAllowed: nullAllowed, ranges: d.ranges}
	}

	var out []valueRange
	i, j := 0, 0
	for i < len(d.ranges) && j < len(o.ranges) {
		a, b := d.ranges[i], o.ranges[j]
		r := valueRange{lo: maxLo(a.lo, b.lo), hi: minHi(a.hi, b.hi)}
		if !r.empty() {
			out = append(out, r)
		}
		// Advance whichever range ends first.
		if hiEndsBefore(a.hi, b.hi) {
			i++
		} else {
			j++
		}
	}
	return &Domain{nullAllowed: nullAllowed, ranges: out}
}

// Union returns the domain of values admitted by either input. Ranges
// are merged only when they provably connect, which keeps the result an
// exact union.
func (d *Domain) Union(o *Domain) *Domain {
	nullAllowed := d.nullAllowed || o.nullAllowed
	if d.all || o.all {
		return &Domain{all: true, nullAllowed: nullAllowed}
	}

	merged := make([]valueRange, 0, len(d.ranges)+len(o.ranges))
	merged = append(merged, d.ranges...)
	merged = append(merged, o.ranges...)
	sort.Slice(merged, func(i, j int) bool { return loLess(merged[i].lo, merged[j].lo) })

	var out []valueRange
	for _, r := range merged {
		if len(out) == 0 {
			out = append(out, r)
			continue
		}
		last := &out[len(out)-1]
		if rangesConnect(*last, r) {
			last.hi = looserHi(last.hi, r.hi)
		} else {
			out = append(out, r)
		}
	}
	return &Domain{nullAllowed: nullAllowed, ranges: out}
}

// rangesConnect reports whether r starts at or before the end of prev,
// given that prev.lo orders at or before r.lo
func rangesConnect(prev, r valueRange) bool {
	if prev.hi.unbounded || r.lo.unbounded {
		return true
	}
	c := r.lo.value.Compare(prev.hi.value)
	if c != 0 {
		return c < 0
	}
	return !r.lo.open || !prev.hi.open
}

// hiEndsBefore reports whether upper bound a ends no later than b
func hiEndsBefore(a, b Bound) bool {
	if b.unbounded {
		return true
	}
	if a.unbounded {
		return false
	}
	c := a.value.Compare(b.value)
	if c != 0 {
		return c < 0
	}
	return a.open || !b.open
}

// looserHi picks the wider of two upper bounds
func looserHi(a, b Bound) Bound {
	if a.unbounded || b.unbounded {
		return Bound{unbounded: true}
	}
	c := a.value.Compare(b.value)
	if c > 0 || (c == 0 && !a.open) {
		return a
	}
	return b
}
