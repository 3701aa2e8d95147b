// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/difficulty"
)

// SchemeForHeight returns the difficulty encoding in effect for blocks at the
// passed height.  Blocks prior to the difficulty fork use the packed encoding
// while the remaining blocks use the compact encoding bounded by the
// proof-of-work limit of the network.
func SchemeForHeight(params *chaincfg.Params, height uint32) difficulty.Scheme {
	if params.IsCompactHeight(height) {
		return difficulty.CompactScheme{
			PowLimit:     params.PowLimitUint256(),
			PowLimitBits: params.PowLimitBits,
		}
	}
	return difficulty.PackedScheme{}
}

// CheckProofOfWorkRange ensures the provided difficulty bits of a block at the
// passed height encode a target that is able to be reached.  The bits
// typically come from a header supplied by a peer, so every failure is
// reported as a rule error of kind ErrUnexpectedDifficulty.
func CheckProofOfWorkRange(params *chaincfg.Params, height uint32, bits uint32) error {
	scheme := SchemeForHeight(params, height)
	if _, err := scheme.Target(bits); err != nil {
		str := fmt.Sprintf("%s block difficulty of %s at height %d is not "+
			"in the valid range: %v", scheme.Name(), scheme.Format(bits),
			height, err)
		return ruleError(ErrUnexpectedDifficulty, str)
	}
	return nil
}

// CheckProofOfWork ensures the difficulty bits of the provided block header
// are in the valid range and that the proof-of-work hash satisfies them.  The
// hash is interpreted per the encoding in effect at the height of the header.
func CheckProofOfWork(params *chaincfg.Params, header *wire.BlockHeader, powHash *chainhash.Hash) error {
	if err := CheckProofOfWorkRange(params, header.Height, header.Bits); err != nil {
		return err
	}

	scheme := SchemeForHeight(params, header.Height)
	if !scheme.IsTargetReached(header.Bits, powHash) {
		str := fmt.Sprintf("proof of work hash %v is higher than the target "+
			"of %s block difficulty %s", powHash, scheme.Name(),
			scheme.Format(header.Bits))
		return ruleError(ErrHighHash, str)
	}
	return nil
}
