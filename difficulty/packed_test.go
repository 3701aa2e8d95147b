// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"errors"
	"math/big"
	"math/rand"
	"strings"
	"testing"
	"time"
)

// randRaw returns a random raw value with exactly the given number of
// significant bits.
func randRaw(rng *rand.Rand, nBits uint) Raw {
	var r Raw
	if nBits == 0 {
		return r
	}
	rng.Read(r[:])
	n := new(big.Int).SetBytes(r[:])
	n.Rsh(n, RawSize*8-nBits)
	n.SetBit(n, int(nBits-1), 1)
	n.FillBytes(r[:])
	return r
}

// randPacked returns a random finite packed difficulty whose work does not
// exceed 256 bits.
func randPacked(rng *rand.Rand, maxOrder uint32) Packed {
	order := uint32(rng.Int63n(int64(maxOrder) + 1))
	mantissa := leadingBit | uint32(rng.Int63n(leadingBit))
	return Pack(order, mantissa)
}

// newTestRand returns a pseudo random number generator seeded from the current
// time and logs the seed so failures can be reproduced.
func newTestRand(t *testing.T) *rand.Rand {
	seed := time.Now().UnixNano()
	t.Logf("random seed: %d", seed)
	return rand.New(rand.NewSource(seed))
}

// TestPackUnpack ensures packing and unpacking every order with a variety of
// normalized mantissas round trips.
func TestPackUnpack(t *testing.T) {
	t.Parallel()

	mantissas := []uint32{0x1000000, 0x1000001, 0x1800000, 0x1abcdef,
		0x1fffffe, 0x1ffffff}
	for order := uint32(0); order <= MaxOrder; order++ {
		for _, mantissa := range mantissas {
			p := Pack(order, mantissa)
			gotOrder, gotMantissa := p.Unpack()
			if gotOrder != order || gotMantissa != mantissa {
				t.Fatalf("round trip (%d, %x) -- got (%d, %x)", order,
					mantissa, gotOrder, gotMantissa)
			}
			if !p.IsValid() || p >= Inf {
				t.Fatalf("(%d, %x) packed to non-finite value %08x", order,
					mantissa, uint32(p))
			}
		}
	}
}

// TestPackLayout ensures the bit layout of packed difficulties matches the
// header encoding.
func TestPackLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order    uint32
		mantissa uint32
		want     Packed
	}{
		{0, 0x1000000, 0x00000000},
		{0, 0x1ffffff, 0x00ffffff},
		{1, 0x1800000, 0x01800000},
		{0x20, 0x1123456, 0x20123456},
		{MaxOrder, 0x1ffffff, 0xfeffffff},
	}

	for _, test := range tests {
		got := Pack(test.order, test.mantissa)
		if got != test.want {
			t.Errorf("Pack(%d, %x) -- got %08x, want %08x", test.order,
				test.mantissa, uint32(got), uint32(test.want))
		}
	}

	if MaxOrder != 254 {
		t.Errorf("unexpected max order %d", MaxOrder)
	}
	if Inf != 0xff000000 {
		t.Errorf("unexpected infinite sentinel %08x", uint32(Inf))
	}
}

// TestPackInf ensures orders beyond the maximum always produce the infinite
// sentinel which is never reached and has no target.
func TestPackInf(t *testing.T) {
	t.Parallel()

	for _, order := range []uint32{MaxOrder + 1, 300, 1 << 31} {
		p := Pack(order, 0x1000000)
		if p != Inf {
			t.Fatalf("order %d -- got %08x, want Inf", order, uint32(p))
		}
	}

	hashes := []*Raw{new(Raw), hexToRaw("01"), hexToRaw(strings.Repeat("ff",
		RawSize))}
	for _, p := range []Packed{Inf, Inf + 1, 0xffffffff} {
		for _, hash := range hashes {
			if p.IsTargetReached(hash) {
				t.Fatalf("%08x: target reached for hash %v", uint32(p), hash)
			}
		}
		work := p.Raw()
		if want := hexToRaw(strings.Repeat("ff", RawSize)); work != *want {
			t.Fatalf("%08x: mismatched raw -- got %v, want %v", uint32(p),
				work, want)
		}
	}

	if _, err := Inf.Target(); !errors.Is(err, ErrUnreachableTarget) {
		t.Fatalf("mismatched Inf target error -- got %v, want %v", err,
			ErrUnreachableTarget)
	}
	if _, err := (Inf + 1).Target(); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("mismatched invalid target error -- got %v, want %v", err,
			ErrInvalidDifficulty)
	}
	if (Inf + 1).IsValid() {
		t.Fatal("value beyond Inf reported as valid")
	}
}

// TestPackDenormalizedPanics ensures packing a mantissa without its leading bit
// panics since it indicates a bug in the caller.
func TestPackDenormalizedPanics(t *testing.T) {
	t.Parallel()

	for _, mantissa := range []uint32{0, 0xffffff, 0x2000000, 0x3000000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("mantissa %x did not panic", mantissa)
				}
			}()
			Pack(0, mantissa)
		}()
	}
}

// TestPackedTarget ensures converting packed difficulties to targets produces
// the expected results.
func TestPackedTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string // test description
		in   Packed // packed difficulty
		want string // expected target
	}{{
		name: "minimum difficulty",
		in:   0,
		want: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}, {
		name: "work 2^32",
		in:   Pack(8, 0x1000000),
		want: "00ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}, {
		name: "work 3*2^31",
		in:   Pack(8, 0x1800000),
		want: "00aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}, {
		name: "work 2^200",
		in:   Pack(176, 0x1000000),
		want: "ffffffffffffffffffff",
	}}

	for _, test := range tests {
		got, err := test.in.Target()
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		if want := hexToUint256(test.want); !got.Eq(want) {
			t.Errorf("%q: mismatched target -- got %x, want %x", test.name,
				got, want)
		}
	}
}

// TestPackedIsTargetReached ensures the target check accepts hashes up to and
// including the target and rejects larger ones.
func TestPackedIsTargetReached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string // test description
		diff Packed // packed difficulty
		hash string // big-endian hash
		want bool   // expected result
	}{{
		name: "minimum difficulty accepts the largest hash",
		diff: 0,
		hash: strings.Repeat("ff", RawSize),
		want: true,
	}, {
		name: "zero hash always reached",
		diff: Pack(MaxOrder, 0x1ffffff),
		hash: "00",
		want: true,
	}, {
		name: "hash equal to target",
		diff: Pack(8, 0x1000000),
		hash: "00" + strings.Repeat("ff", RawSize-1),
		want: true,
	}, {
		name: "hash one above target",
		diff: Pack(8, 0x1000000),
		hash: "01" + strings.Repeat("00", RawSize-1),
		want: false,
	}}

	for _, test := range tests {
		got := test.diff.IsTargetReached(hexToRaw(test.hash))
		if got != test.want {
			t.Errorf("%q: mismatched result -- got %v, want %v", test.name,
				got, test.want)
		}
	}
}

// TestPackedIsTargetReachedReference ensures the double-width multiplication
// check agrees with an independent big integer implementation as well as the
// target returned by Target for random hashes and difficulties.
func TestPackedIsTargetReachedReference(t *testing.T) {
	t.Parallel()

	rng := newTestRand(t)
	limit := new(big.Int).Lsh(big.NewInt(1), (RawSize+MantissaBits/8)*8)
	for i := 0; i < 2000; i++ {
		diff := randPacked(rng, 200)
		hash := randRaw(rng, uint(rng.Intn(RawSize*8+1)))
		work := diff.Raw()

		// Check the product itself.
		want := new(big.Int).Mul(new(big.Int).SetBytes(hash[:]),
			new(big.Int).SetBytes(work[:]))
		prod := mulWide(&hash, &work)
		if got := new(big.Int).SetBytes(prod[:]); got.Cmp(want) != 0 {
			t.Fatalf("mismatched product of %v and %v -- got %x, want %x",
				hash, work, got, want)
		}

		reached := diff.IsTargetReached(&hash)
		if wantReached := want.Cmp(limit) < 0; reached != wantReached {
			t.Fatalf("%v with hash %v -- got %v, want %v", diff, hash,
				reached, wantReached)
		}

		target, err := diff.Target()
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", diff, err)
		}
		hashNum := hash.Uint256()
		if wantReached := !hashNum.Gt(&target); reached != wantReached {
			t.Fatalf("%v with hash %v disagrees with target %x", diff, hash,
				target)
		}
	}
}

// TestPackedTargetMonotonic ensures harder packed difficulties always produce
// strictly lower targets.
func TestPackedTargetMonotonic(t *testing.T) {
	t.Parallel()

	rng := newTestRand(t)
	for i := 0; i < 1000; i++ {
		d1, d2 := randPacked(rng, 150), randPacked(rng, 150)
		if d1 == d2 {
			continue
		}
		if d1 > d2 {
			d1, d2 = d2, d1
		}
		w1, w2 := d1.Raw(), d2.Raw()
		if w1.Cmp(&w2) >= 0 {
			t.Fatalf("work of %v is not below work of %v", d1, d2)
		}
		t1, err := d1.Target()
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", d1, err)
		}
		t2, err := d2.Target()
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", d2, err)
		}
		if !t2.Lt(&t1) {
			t.Fatalf("target of %v (%x) is not below target of %v (%x)", d2,
				t2, d1, t1)
		}
	}
}

// TestPackedSupersetOfHashes ensures any hash that satisfies a harder packed
// difficulty also satisfies an easier one.
func TestPackedSupersetOfHashes(t *testing.T) {
	t.Parallel()

	rng := newTestRand(t)
	for i := 0; i < 2000; i++ {
		easy, hard := randPacked(rng, 60), randPacked(rng, 60)
		if easy > hard {
			easy, hard = hard, easy
		}
		hash := randRaw(rng, uint(rng.Intn(RawSize*8+1)))
		if hard.IsTargetReached(&hash) && !easy.IsTargetReached(&hash) {
			t.Fatalf("hash %v reached %v but not easier %v", hash, hard,
				easy)
		}
	}
}

// TestCalcPacked ensures retargeting produces the expected packed difficulties
// for exactly representable cases and the edge cases.
func TestCalcPacked(t *testing.T) {
	t.Parallel()

	maxRaw := *new(Raw).Inv()
	tests := []struct {
		name  string // test description
		ref   Raw    // reference work
		dh    uint32 // number of blocks
		dtTrg uint32 // target seconds per block
		dtSrc uint32 // observed seconds
		want  Packed // expected packed difficulty
	}{{
		name:  "on schedule keeps difficulty",
		ref:   Pack(40, 0x1abcdef).Raw(),
		dh:    1,
		dtTrg: 60,
		dtSrc: 60,
		want:  Pack(40, 0x1abcdef),
	}, {
		name:  "on schedule with small order",
		ref:   Pack(3, 0x1234567).Raw(),
		dh:    1,
		dtTrg: 60,
		dtSrc: 60,
		want:  Pack(3, 0x1234567),
	}, {
		name:  "window of blocks on schedule",
		ref:   Pack(50, 0x1800000).Raw(),
		dh:    2,
		dtTrg: 120,
		dtSrc: 60,
		want:  Pack(50, 0x1800000),
	}, {
		name:  "twice as fast doubles difficulty",
		ref:   Pack(50, 0x1800000).Raw(),
		dh:    1,
		dtTrg: 120,
		dtSrc: 60,
		want:  Pack(51, 0x1800000),
	}, {
		name:  "twice as slow halves difficulty",
		ref:   Pack(50, 0x1800000).Raw(),
		dh:    1,
		dtTrg: 60,
		dtSrc: 120,
		want:  Pack(49, 0x1800000),
	}, {
		name:  "zero work underflows to minimum",
		ref:   Raw{},
		dh:    10,
		dtTrg: 60,
		dtSrc: 600,
		want:  0,
	}, {
		name:  "tiny work underflows to minimum",
		ref:   *hexToRaw("01"),
		dh:    1,
		dtTrg: 1,
		dtSrc: 1000,
		want:  0,
	}, {
		name:  "huge work overflows to infinity",
		ref:   maxRaw,
		dh:    1,
		dtTrg: 0xffffffff,
		dtSrc: 1,
		want:  Inf,
	}}

	for _, test := range tests {
		got := CalcPacked(&test.ref, test.dh, test.dtTrg, test.dtSrc)
		if got != test.want {
			t.Errorf("%q: mismatched result -- got %v, want %v", test.name,
				got, test.want)
		}
	}
}

// TestCalcPackedZeroSpanPanics ensures retargeting over an empty time span
// panics since the divisor must never be zero.
func TestCalcPackedZeroSpanPanics(t *testing.T) {
	t.Parallel()

	tests := []struct{ dh, dtSrc uint32 }{{0, 60}, {10, 0}, {0, 0}}
	for _, test := range tests {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("dh %d, dtSrc %d did not panic", test.dh,
						test.dtSrc)
				}
			}()
			ref := Pack(40, 0x1000000).Raw()
			CalcPacked(&ref, test.dh, 60, test.dtSrc)
		}()
	}
}

// TestCalcPackedAccuracy ensures the retargeted difficulty approximates
// ref * dtTrg / (dtSrc * dh) within the precision of the mantissa.
func TestCalcPackedAccuracy(t *testing.T) {
	t.Parallel()

	rng := newTestRand(t)
	for i := 0; i < 2000; i++ {
		ref := randRaw(rng, uint(64+rng.Intn(137)))
		dh := uint32(1 + rng.Intn(1000))
		dtTrg := uint32(1 + rng.Intn(600))
		dtSrc := uint32(1 + rng.Intn(100000))

		got := CalcPacked(&ref, dh, dtTrg, dtSrc)
		gotWork := got.Raw()

		// exact = ref * dtTrg / (dtSrc * dh), so compare
		// |ref*dtTrg - got*dtSrc*dh| * 2^23 <= ref*dtTrg.
		num := new(big.Int).SetBytes(ref[:])
		num.Mul(num, big.NewInt(int64(dtTrg)))
		approx := new(big.Int).SetBytes(gotWork[:])
		approx.Mul(approx, big.NewInt(int64(dtSrc)*int64(dh)))
		errBound := new(big.Int).Sub(num, approx)
		errBound.Abs(errBound)
		errBound.Lsh(errBound, MantissaBits-1)
		if errBound.Cmp(num) > 0 {
			t.Fatalf("ref %v, dh %d, dtTrg %d, dtSrc %d: result %v is "+
				"outside of the expected precision", ref, dh, dtTrg, dtSrc,
				got)
		}
	}
}

// TestPackedFloat64 ensures the display approximations of packed difficulties
// and raw values agree and produce the expected values.
func TestPackedFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Packed
		want float64
	}{
		{0, 1},
		{Pack(1, 0x1800000), 3},
		{Pack(24, 0x1000000), 1 << 24},
		{Pack(0, 0x1400000), 1.25},
	}

	for _, test := range tests {
		if got := test.in.Float64(); got != test.want {
			t.Errorf("%08x: mismatched float -- got %v, want %v",
				uint32(test.in), got, test.want)
		}
		work := test.in.Raw()
		if got := RawToFloat64(&work); got != test.want {
			t.Errorf("%08x: mismatched raw float -- got %v, want %v",
				uint32(test.in), got, test.want)
		}
	}
}

// TestPackedString ensures the diagnostic text form of packed difficulties is
// the expected one.
func TestPackedString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Packed
		want string
	}{
		{0, "00-000000(1)"},
		{Pack(1, 0x1800000), "01-800000(3)"},
		{Pack(0x20, 0x1abcdef), "20-abcdef(7.177367296e+09)"},
	}

	for _, test := range tests {
		if got := test.in.String(); got != test.want {
			t.Errorf("%08x: mismatched string -- got %q, want %q",
				uint32(test.in), got, test.want)
		}
	}
}
