// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/decred/dcrd/wire"
)

// TestNetParams returns the network parameters for the test network.
func TestNetParams() *Params {
	// testNetPowLimit is the highest proof of work value a block can have
	// for the test network.  It is the value 2^232 - 1.
	testNetPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 232), bigOne)

	// testNetPowLimitBits is the test network proof of work limit in its
	// compact representation.
	//
	// Note that due to the limited precision of the compact representation,
	// this is not exactly equal to the pow limit.  It is the value:
	//
	// 0x000000ffff000000000000000000000000000000000000000000000000000000
	const testNetPowLimitBits = 0x1e00ffff // 503382015

	return &Params{
		Name:         "testnet",
		Net:          wire.TestNet3,
		PowLimit:     testNetPowLimit,
		PowLimitBits: testNetPowLimitBits,

		// Order 24 with an empty mantissa is a work of 2^48, or about
		// 2^24 hashes per block.
		InitialPackedBits: 0x18000000,

		DifficultyForkHeight: 90000,
		ForkInitialBits:      testNetPowLimitBits,

		TargetTimePerBlock:    time.Minute,
		WorkWindow:            120,
		RetargetMedianWindow:  7,
		TimestampMedianWindow: 25,
		DampM:                 1,
		DampN:                 3,
	}
}
