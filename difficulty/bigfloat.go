// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"math/bits"

	"github.com/decred/dcrd/math/uint256"
)

// bigFloatBits is the number of bits in the mantissa of a bigFloat.
const bigFloatBits = 32

// bigFloat is a bounded precision floating point value made of a signed binary
// order and a 32-bit mantissa whose value is mantissa * 2^order.
//
// The mantissa is always normalized such that its most significant bit is set
// unless the value is zero, in which case both fields are zero.  Only integer
// arithmetic is involved so the results are identical on every platform, which
// is a requirement for anything consensus critical.
type bigFloat struct {
	order int32
	value uint32
}

// newBigFloatFromUint256 returns the bigFloat nearest to, and never greater
// than, the passed unsigned 256-bit integer.
func newBigFloatFromUint256(n *uint256.Uint256) bigFloat {
	nBits := int32(n.BitLen())
	if nBits == 0 {
		return bigFloat{}
	}

	order := nBits - bigFloatBits
	var x uint256.Uint256
	if order > 0 {
		x.RshVal(n, uint32(order))
	} else {
		x.LshVal(n, uint32(-order))
	}
	return bigFloat{order: order, value: x.Uint32()}
}

// newBigFloatFromRaw returns the bigFloat nearest to, and never greater than,
// the passed raw value.
func newBigFloatFromRaw(r *Raw) bigFloat {
	n := r.Uint256()
	return newBigFloatFromUint256(&n)
}

// newBigFloat returns the bigFloat nearest to, and never greater than, the
// passed unsigned 64-bit integer.
func newBigFloat(v uint64) bigFloat {
	nBits := int32(bits.Len64(v))
	if nBits == 0 {
		return bigFloat{}
	}

	order := nBits - bigFloatBits
	if order > 0 {
		v >>= uint32(order)
	} else {
		v <<= uint32(-order)
	}
	return bigFloat{order: order, value: uint32(v)}
}

// isZero returns whether or not the value is zero.
func (f bigFloat) isZero() bool {
	return f.value == 0
}

// mul returns the product of the two values renormalized to a 32-bit mantissa.
func (f bigFloat) mul(x bigFloat) bigFloat {
	res := newBigFloat(uint64(f.value) * uint64(x.value))
	if res.isZero() {
		return res
	}
	res.order += f.order + x.order
	return res
}

// div returns the quotient of the two values renormalized to a 32-bit mantissa.
// The divisor must not be zero.
func (f bigFloat) div(x bigFloat) bigFloat {
	if x.isZero() {
		panicf("bigFloat division by zero (dividend %d*2^%d)", f.value, f.order)
	}

	res := newBigFloat((uint64(f.value) << bigFloatBits) / uint64(x.value))
	if res.isZero() {
		return res
	}
	res.order += f.order - (x.order + bigFloatBits)
	return res
}
