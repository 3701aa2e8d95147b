// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/difficulty"
)

const (
	schemePacked  = "packed"
	schemeCompact = "compact"
)

// trimHexPrefix removes an optional 0x prefix from the passed string.
func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// parseBits parses difficulty bits given as up to eight hex digits with an
// optional 0x prefix.
func parseBits(s string) (uint32, error) {
	s = trimHexPrefix(s)
	if s == "" {
		return 0, fmt.Errorf("empty difficulty bits")
	}
	bits, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid difficulty bits %q: %w", s, err)
	}
	return uint32(bits), nil
}

// parseRaw parses a big-endian hex value of up to 64 digits with an optional
// 0x prefix.  Shorter values are zero extended.
func parseRaw(s string) (*difficulty.Raw, error) {
	s = trimHexPrefix(s)
	if s == "" || len(s) > difficulty.RawSize*2 {
		return nil, fmt.Errorf("invalid work %q: must be 1 to %d hex digits",
			s, difficulty.RawSize*2)
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid work %q: %w", s, err)
	}
	var r difficulty.Raw
	copy(r[difficulty.RawSize-len(b):], b)
	return &r, nil
}

// parseHash parses a proof-of-work hash in the byte-reversed display order
// used for hashes throughout the ecosystem.
func parseHash(s string) (*chainhash.Hash, error) {
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return hash, nil
}

// schemeByName returns the encoding with the passed name for the passed
// network.
func schemeByName(params *chaincfg.Params, name string) (difficulty.Scheme, error) {
	switch name {
	case schemePacked:
		return difficulty.PackedScheme{}, nil
	case schemeCompact:
		return difficulty.CompactScheme{
			PowLimit:     params.PowLimitUint256(),
			PowLimitBits: params.PowLimitBits,
		}, nil
	}
	return nil, fmt.Errorf("unknown difficulty encoding %q", name)
}
