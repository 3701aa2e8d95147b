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

// MainNetParams returns the network parameters for the main network.
func MainNetParams() *Params {
	// mainPowLimit is the highest proof of work value a block can have for
	// the main network.  It is the value 2^224 - 1.
	mainPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// mainPowLimitBits is the main network proof of work limit in its
	// compact representation.
	//
	// Note that due to the limited precision of the compact representation,
	// this is not exactly equal to the pow limit.  It is the value:
	//
	// 0x00000000ffff0000000000000000000000000000000000000000000000000000
	const mainPowLimitBits = 0x1d00ffff // 486604799

	return &Params{
		Name:         "mainnet",
		Net:          wire.MainNet,
		PowLimit:     mainPowLimit,
		PowLimitBits: mainPowLimitBits,

		// Order 32 with an empty mantissa is a work of 2^56, or about
		// 2^32 hashes per block.
		InitialPackedBits: 0x20000000,

		// The compact limit also requires about 2^32 hashes per block so
		// the expected work per block is unchanged across the fork.
		DifficultyForkHeight: 321321,
		ForkInitialBits:      mainPowLimitBits,

		TargetTimePerBlock:    time.Minute,
		WorkWindow:            120,
		RetargetMedianWindow:  7,
		TimestampMedianWindow: 25,
		DampM:                 1,
		DampN:                 3,
	}
}
