// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sort"

	"github.com/decred/powdiff/difficulty"
)

// BlockNode represents the difficulty related data of a block header that is
// connected to the chain.
type BlockNode struct {
	// Height is the position of the block in the chain.
	Height uint32

	// Timestamp is the block time in seconds since the unix epoch.
	Timestamp int64

	// Bits is the difficulty of the block in the encoding in effect at its
	// height.
	Bits uint32

	// ChainWork is the total amount of work in the chain up to and
	// including this block.
	ChainWork difficulty.Raw
}

// NodeSource provides access to the connected block nodes by height.
type NodeSource interface {
	// NodeByHeight returns the block node at the passed height.  An error
	// that matches ErrUnknownNode must be returned when there is no such
	// node.
	NodeByHeight(height uint32) (*BlockNode, error)
}

// NodeStore is a NodeSource that is also able to persist new nodes.
type NodeStore interface {
	NodeSource

	// PutNode stores the passed node as the new best node.
	PutNode(node *BlockNode) error

	// Tip returns the best node.  Both the node and the error are nil when
	// there are no nodes.
	Tip() (*BlockNode, error)
}

// memNodeStore is a NodeStore that keeps all nodes in memory.  It is not safe
// for concurrent access.
type memNodeStore struct {
	nodes []*BlockNode
}

// Ensure memNodeStore implements the NodeStore interface.
var _ NodeStore = (*memNodeStore)(nil)

// NodeByHeight returns the block node at the passed height.
func (s *memNodeStore) NodeByHeight(height uint32) (*BlockNode, error) {
	if uint64(height) >= uint64(len(s.nodes)) {
		return nil, unknownNodeError(height)
	}
	return s.nodes[height], nil
}

// PutNode appends the passed node which must be at the next height.
func (s *memNodeStore) PutNode(node *BlockNode) error {
	if uint64(node.Height) != uint64(len(s.nodes)) {
		return AssertError("node does not extend the in-memory store")
	}
	s.nodes = append(s.nodes, node)
	return nil
}

// Tip returns the best node or nil when there are no nodes.
func (s *memNodeStore) Tip() (*BlockNode, error) {
	if len(s.nodes) == 0 {
		return nil, nil
	}
	return s.nodes[len(s.nodes)-1], nil
}

// medianTimestamp calculates the median time of the previous few blocks prior
// to, and including, the block at the passed height.  Fewer blocks are used
// near the beginning of the chain.
//
// NOTE: The median is the middle element of the sorted timestamps, which is
// not a true median for an even number of them.  The windows are required to
// be odd, so this only affects the first few blocks of the chain.
func medianTimestamp(src NodeSource, height, window uint32) (int64, error) {
	first := uint32(0)
	if height+1 > window {
		first = height + 1 - window
	}

	timestamps := make([]int64, 0, height-first+1)
	for h := first; h <= height; h++ {
		node, err := src.NodeByHeight(h)
		if err != nil {
			return 0, err
		}
		timestamps = append(timestamps, node.Timestamp)
	}
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] < timestamps[j]
	})
	return timestamps[len(timestamps)/2], nil
}
