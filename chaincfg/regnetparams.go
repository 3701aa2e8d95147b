// Copyright (c) 2018-2021 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/decred/dcrd/wire"
)

// RegNetParams returns the network parameters for the regression test network.
// This should not be confused with the public test network.  The purpose of
// this network is primarily for unit tests, so its windows are short and the
// difficulty fork happens early.
//
// Since this network is only intended for unit testing, its values are subject
// to change even if it would cause a hard fork.
func RegNetParams() *Params {
	// regNetPowLimit is the highest proof of work value a block can have for
	// the regression test network.  It is the value 2^255 - 1.
	regNetPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	return &Params{
		Name:         "regnet",
		Net:          wire.RegNet,
		PowLimit:     regNetPowLimit,
		PowLimitBits: 0x207fffff, // 545259519 [7fffff0000000000000000000000000000000000000000000000000000000000]

		// The minimum packed difficulty is satisfied by every hash.
		InitialPackedBits: 0,

		DifficultyForkHeight: 40,
		ForkInitialBits:      0x207fffff,

		TargetTimePerBlock:    time.Second,
		WorkWindow:            8,
		RetargetMedianWindow:  3,
		TimestampMedianWindow: 5,
		DampM:                 1,
		DampN:                 3,
	}
}
