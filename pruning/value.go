package pruning

import (
	"bytes"
	"fmt"
	"math"
)

type valueKind int

const (
	integerKey valueKind = iota
	realKey
	bytesKey
)

// Value is a single comparable point in a column's value space. All
// values for one column share the same key space: integers, dates and
// booleans live on an int64 axis, 32-bit floats on the same axis through
// an order-preserving bit mapping, doubles on a float64 axis, and byte
// strings under byte-lexicographic order.
type Value struct {
	kind valueKind
	i    int64
	f    float64
	b    []byte
}

// Int64Value builds a value on the integer axis
func Int64Value(v int64) Value {
	return Value{kind: integerKey, i: v}
}

// BoolValue builds a boolean value; false orders before true
func BoolValue(v bool) Value {
	if v {
		return Value{kind: integerKey, i: 1}
	}
	return Value{kind: integerKey, i: 0}
}

// Float32Value builds a 32-bit float value. The raw bit pattern is
// remapped onto the integer axis such that the integer order matches the
// IEEE-754 order of the floats, including sign and exponent.
func Float32Value(v float32) Value {
	return Value{kind: integerKey, i: float32OrderedKey(v)}
}

// Float64Value builds a value on the double axis
func Float64Value(v float64) Value {
	return Value{kind: realKey, f: v}
}

// BytesValue builds a byte-string value under byte-lexicographic order
func BytesValue(v []byte) Value {
	b := make([]byte, len(v))
	copy(b, v)
	return Value{kind: bytesKey, b: b}
}

// StringValue builds a byte-string value from a Go string
func StringValue(v string) Value {
	return Value{kind: bytesKey, b: []byte(v)}
}

// float32OrderedKey maps a float's raw bits to an int64 that is strictly
// monotone in the float's IEEE-754 order: the sign bit is flipped for
// non-negative values and all bits are flipped for negative ones.
func float32OrderedKey(v float32) int64 {
	bits := math.Float32bits(v)
	if bits&0x80000000 != 0 {
		bits = ^bits
	} else {
		bits |= 0x80000000
	}
	return int64(bits)
}

// Compare orders two values on the same axis. Values from different
// axes are never compared; mixing them is a programming error.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		panic(fmt.Sprintf("comparing values from different key spaces: %d vs %d", v.kind, o.kind))
	}
	switch v.kind {
	case integerKey:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		}
		return 0
	case realKey:
		switch {
		case v.f < o.f:
			return -1
		case v.f > o.f:
			return 1
		}
		return 0
	default:
		return bytes.Compare(v.b, o.b)
	}
}

// Int64 returns the value's position on the integer axis
func (v Value) Int64() int64 { return v.i }

// Float64 returns the value's position on the double axis
func (v Value) Float64() float64 { return v.f }

// Bytes returns the value's byte-string content
func (v Value) Bytes() []byte { return v.b }

// IntegerRange holds decoded integer statistics bounds before they are
// turned into a domain
type IntegerRange struct {
	Min int64
	Max int64
}

// DoubleRange holds decoded floating-point statistics bounds before they
// are turned into a domain
type DoubleRange struct {
	Min float64
	Max float64
}

// BytesRange holds decoded byte-string statistics bounds before they are
// turned into a domain
type BytesRange struct {
	Min []byte
	Max []byte
}
