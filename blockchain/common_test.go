// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
	"github.com/decred/powdiff/chaincfg"
)

// testParams returns the regression test network parameters with a compact
// initial difficulty that is hard enough for retargets to be observed.
func testParams() *chaincfg.Params {
	params := chaincfg.RegNetParams()
	params.ForkInitialBits = 0x1f00ffff
	return params
}

// zeroPowHasher is a PowHasher that always produces the zero hash, which
// satisfies every valid difficulty.
func zeroPowHasher(*wire.BlockHeader) chainhash.Hash {
	return chainhash.Hash{}
}

// newFakeNodes returns a store with numNodes nodes that follow the difficulty
// rules of the passed parameters and whose timestamps are produced by the
// passed function.
func newFakeNodes(t *testing.T, params *chaincfg.Params, numNodes uint32, timestamp func(height uint32) int64) *memNodeStore {
	t.Helper()

	store := &memNodeStore{}
	for height := uint32(0); height < numNodes; height++ {
		bits, err := CalcNextRequiredDifficulty(params, store, height)
		if err != nil {
			t.Fatalf("height %d: unexpected error: %v", height, err)
		}

		node := &BlockNode{
			Height:    height,
			Timestamp: timestamp(height),
			Bits:      bits,
		}
		if height > 0 {
			node.ChainWork = store.nodes[height-1].ChainWork
		}
		work, err := SchemeForHeight(params, height).Work(bits)
		if err != nil {
			t.Fatalf("height %d: unexpected error: %v", height, err)
		}
		node.ChainWork.Add(&work)
		if err := store.PutNode(node); err != nil {
			t.Fatalf("height %d: unexpected error: %v", height, err)
		}
	}
	return store
}

// chainHarness provides a test harness which connects headers to a chain and
// checks the results.
type chainHarness struct {
	t     *testing.T
	chain *BlockChain
}

// newChainHarness returns a harness for a new chain that uses the passed
// parameters and store along with a proof-of-work hasher that always
// succeeds.
func newChainHarness(t *testing.T, params *chaincfg.Params, store NodeStore) *chainHarness {
	t.Helper()

	chain, err := New(&Config{
		ChainParams: params,
		Store:       store,
		PowHasher:   zeroPowHasher,
	})
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	return &chainHarness{t: t, chain: chain}
}

// NextHeader returns a header for the next block of the chain with the
// required difficulty and the passed timestamp.
func (h *chainHarness) NextHeader(timestamp int64) *wire.BlockHeader {
	h.t.Helper()

	bits, height, err := h.chain.NextRequiredDifficulty()
	if err != nil {
		h.t.Fatalf("failed to calculate next difficulty: %v", err)
	}
	return &wire.BlockHeader{
		Version:   1,
		Bits:      bits,
		Height:    height,
		Timestamp: time.Unix(timestamp, 0),
	}
}

// AcceptHeader connects the passed header and fails the test when it is
// rejected.
func (h *chainHarness) AcceptHeader(header *wire.BlockHeader) *BlockNode {
	h.t.Helper()

	node, err := h.chain.ConnectHeader(header)
	if err != nil {
		h.t.Fatalf("header at height %d rejected: %v\n%s", header.Height,
			err, spew.Sdump(header))
	}
	return node
}

// RejectHeader ensures connecting the passed header fails with the expected
// kind of error and leaves the tip unchanged.
func (h *chainHarness) RejectHeader(header *wire.BlockHeader, kind ErrorKind) {
	h.t.Helper()

	tip := h.chain.Tip()
	_, err := h.chain.ConnectHeader(header)
	if !errors.Is(err, kind) {
		h.t.Fatalf("header at height %d: mismatched error -- got %v, want "+
			"%v", header.Height, err, kind)
	}
	var rerr RuleError
	if !errors.As(err, &rerr) {
		h.t.Fatalf("header at height %d: error %v is not a RuleError",
			header.Height, err)
	}
	if got := h.chain.Tip(); (got == nil) != (tip == nil) ||
		(got != nil && *got != *tip) {

		h.t.Fatalf("tip changed by rejected header -- got %s, want %s",
			spew.Sdump(got), spew.Sdump(tip))
	}
}
