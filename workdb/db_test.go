// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workdb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
	"github.com/decred/powdiff/blockchain"
	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/difficulty"
)

// openTestDB opens a new work database in a temporary directory that is closed
// when the test finishes.
func openTestDB(t *testing.T, net wire.CurrencyNet, cacheSize uint32) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "work")
	db, err := Open(dbPath, net, cacheSize)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

// zeroPowHasher is a proof-of-work hasher that always produces the zero hash,
// which satisfies every valid difficulty.
func zeroPowHasher(*wire.BlockHeader) chainhash.Hash {
	return chainhash.Hash{}
}

// testNode returns a node at the passed height with values derived from it.
func testNode(height uint32) *blockchain.BlockNode {
	node := &blockchain.BlockNode{
		Height:    height,
		Timestamp: 1700000000 + int64(height)*60,
		Bits:      0x1d00ffff - height,
	}
	for i := uint32(0); i <= height; i++ {
		node.ChainWork.AddDifficulty(difficulty.Pack(8, 0x1800000))
	}
	return node
}

// TestSerializeNode ensures serializing and deserializing nodes works as
// intended and rejects entries of the wrong size.
func TestSerializeNode(t *testing.T) {
	t.Parallel()

	node := testNode(3)
	node.Timestamp = -1
	serialized := serializeNode(node)
	if len(serialized) != serializedNodeLen {
		t.Fatalf("mismatched length -- got %d, want %d", len(serialized),
			serializedNodeLen)
	}
	got, err := deserializeNode(3, serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *node {
		t.Fatalf("mismatched node -- got %s, want %s", spew.Sdump(got),
			spew.Sdump(node))
	}

	_, err = deserializeNode(3, serialized[:serializedNodeLen-1])
	if !errors.Is(err, ErrDatabaseCorruption) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			ErrDatabaseCorruption)
	}
}

// TestNodeKeyOrder ensures node keys sort in height order.
func TestNodeKeyOrder(t *testing.T) {
	t.Parallel()

	heights := []uint32{0, 1, 255, 256, 65536, 1 << 31}
	for i := 1; i < len(heights); i++ {
		prev, cur := nodeKey(heights[i-1]), nodeKey(heights[i])
		if string(prev) >= string(cur) {
			t.Fatalf("key for height %d does not sort before key for height "+
				"%d", heights[i-1], heights[i])
		}
	}
}

// TestPutAndFetchNodes ensures nodes are stored, fetched through the cache and
// from the database, and persisted across reopening.
func TestPutAndFetchNodes(t *testing.T) {
	t.Parallel()

	// A tiny cache ensures most reads are served by the database.
	db, dbPath := openTestDB(t, wire.RegNet, 2)
	if tip, err := db.Tip(); err != nil || tip != nil {
		t.Fatalf("unexpected tip %v for empty database (err %v)", tip, err)
	}
	if _, err := db.NodeByHeight(0); !errors.Is(err, blockchain.ErrUnknownNode) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			blockchain.ErrUnknownNode)
	}

	const numNodes = 10
	for height := uint32(0); height < numNodes; height++ {
		if err := db.PutNode(testNode(height)); err != nil {
			t.Fatalf("failed to put node %d: %v", height, err)
		}
	}
	for height := uint32(0); height < numNodes; height++ {
		node, err := db.NodeByHeight(height)
		if err != nil {
			t.Fatalf("failed to fetch node %d: %v", height, err)
		}
		if want := testNode(height); *node != *want {
			t.Fatalf("mismatched node %d -- got %s, want %s", height,
				spew.Sdump(node), spew.Sdump(want))
		}
	}
	if _, err := db.NodeByHeight(numNodes); !errors.Is(err, blockchain.ErrUnknownNode) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			blockchain.ErrUnknownNode)
	}

	// Nodes must extend the best node.
	for _, height := range []uint32{numNodes - 1, numNodes + 1} {
		err := db.PutNode(testNode(height))
		if !errors.Is(err, ErrNodeOutOfOrder) {
			t.Fatalf("mismatched error -- got %v, want %v", err,
				ErrNodeOutOfOrder)
		}
	}

	// Reopen the database and ensure the best node is restored.
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	if _, err := db.Tip(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.NodeByHeight(0); !errors.Is(err, ErrDatabaseNotOpen) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			ErrDatabaseNotOpen)
	}
	db2, err := Open(dbPath, wire.RegNet, 0)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db2.Close()
	tip, err := db2.Tip()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testNode(numNodes - 1); tip == nil || *tip != *want {
		t.Fatalf("mismatched tip -- got %s, want %s", spew.Sdump(tip),
			spew.Sdump(want))
	}
}

// TestNetworkMismatch ensures a database created for one network can't be
// opened for another.
func TestNetworkMismatch(t *testing.T) {
	t.Parallel()

	db, dbPath := openTestDB(t, wire.TestNet3, 0)
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	_, err := Open(dbPath, wire.MainNet, 0)
	if !errors.Is(err, ErrNetworkMismatch) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			ErrNetworkMismatch)
	}
	db2, err := Open(dbPath, wire.TestNet3, 0)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	db2.Close()
}

// TestChainResumesFromDB ensures a chain backed by the database picks up where
// a previous chain backed by the same database left off.
func TestChainResumesFromDB(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	params.ForkInitialBits = 0x1f00ffff
	db, dbPath := openTestDB(t, params.Net, 4)

	newChain := func(store blockchain.NodeStore) *blockchain.BlockChain {
		chain, err := blockchain.New(&blockchain.Config{
			ChainParams: params,
			Store:       store,
			PowHasher:   zeroPowHasher,
		})
		if err != nil {
			t.Fatalf("failed to create chain: %v", err)
		}
		return chain
	}
	connect := func(chain *blockchain.BlockChain, from, to uint32) {
		for height := from; height < to; height++ {
			bits, nextHeight, err := chain.NextRequiredDifficulty()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			header := &wire.BlockHeader{
				Version:   1,
				Bits:      bits,
				Height:    nextHeight,
				Timestamp: time.Unix(1000+3*int64(height), 0),
			}
			if _, err := chain.ConnectHeader(header); err != nil {
				t.Fatalf("height %d rejected: %v", height, err)
			}
		}
	}

	// Connect part of the chain, reopen the database and connect the rest.
	chain := newChain(db)
	connect(chain, 0, 45)
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	db2, err := Open(dbPath, params.Net, 4)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db2.Close()
	chain = newChain(db2)
	connect(chain, 45, 60)

	// The result must match a chain kept entirely in memory.
	memChain := newChain(nil)
	connect(memChain, 0, 60)
	got, want := chain.Tip(), memChain.Tip()
	if *got != *want {
		t.Fatalf("mismatched tip -- got %s, want %s", spew.Sdump(got),
			spew.Sdump(want))
	}
}
