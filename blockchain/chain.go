// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
	"github.com/decred/powdiff/chaincfg"
	"github.com/decred/powdiff/difficulty"
)

// PowHasher calculates the proof-of-work hash of a block header.
type PowHasher func(header *wire.BlockHeader) chainhash.Hash

// blockHashPowHasher is the default PowHasher which uses the block hash.
func blockHashPowHasher(header *wire.BlockHeader) chainhash.Hash {
	return header.BlockHash()
}

// Config is a descriptor which specifies the blockchain instance configuration.
type Config struct {
	// ChainParams identifies which chain parameters the chain is associated
	// with.
	//
	// This field is required.
	ChainParams *chaincfg.Params

	// Store defines where connected block nodes are persisted.  The chain
	// resumes from the best node of the store.
	//
	// This field can be nil in which case the nodes are only kept in memory.
	Store NodeStore

	// PowHasher defines the function used to calculate the proof-of-work hash
	// of headers.
	//
	// This field can be nil in which case the block hash is used.
	PowHasher PowHasher
}

// BlockChain provides functions for connecting block headers to a single chain
// while enforcing the proof-of-work difficulty rules and tracking the total
// work of the chain.
type BlockChain struct {
	params    *chaincfg.Params
	powHasher PowHasher

	// These fields are protected by the chain lock.
	chainLock sync.RWMutex
	store     NodeStore
	tip       *BlockNode
}

// New returns a BlockChain instance using the provided configuration details.
func New(config *Config) (*BlockChain, error) {
	// Enforce required config fields.
	if config.ChainParams == nil {
		return nil, AssertError("blockchain.New chain parameters nil")
	}
	if err := config.ChainParams.Validate(); err != nil {
		str := fmt.Sprintf("blockchain.New invalid chain parameters: %v", err)
		return nil, AssertError(str)
	}

	b := BlockChain{
		params:    config.ChainParams,
		powHasher: config.PowHasher,
		store:     config.Store,
	}
	if b.powHasher == nil {
		b.powHasher = blockHashPowHasher
	}
	if b.store == nil {
		b.store = &memNodeStore{}
	}

	tip, err := b.store.Tip()
	if err != nil {
		return nil, err
	}
	b.tip = tip
	if tip != nil {
		log.Infof("Chain state: height %d, bits %s, total work %v",
			tip.Height, SchemeForHeight(b.params, tip.Height).Format(tip.Bits),
			tip.ChainWork)
	}
	return &b, nil
}

// Tip returns a copy of the best node of the chain or nil when no headers have
// been connected.
//
// This function is safe for concurrent access.
func (b *BlockChain) Tip() *BlockNode {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	if b.tip == nil {
		return nil
	}
	node := *b.tip
	return &node
}

// NodeByHeight returns a copy of the connected node at the passed height.
//
// This function is safe for concurrent access.
func (b *BlockChain) NodeByHeight(height uint32) (*BlockNode, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	if b.tip == nil || height > b.tip.Height {
		return nil, unknownNodeError(height)
	}
	node, err := b.store.NodeByHeight(height)
	if err != nil {
		return nil, err
	}
	nodeCopy := *node
	return &nodeCopy, nil
}

// nextHeight returns the height of the next block to connect.
//
// This function MUST be called with the chain lock held (for reads).
func (b *BlockChain) nextHeight() uint32 {
	if b.tip == nil {
		return 0
	}
	return b.tip.Height + 1
}

// NextRequiredDifficulty returns the difficulty bits required for the next
// block to connect to the chain along with its height.
//
// This function is safe for concurrent access.
func (b *BlockChain) NextRequiredDifficulty() (uint32, uint32, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	height := b.nextHeight()
	bits, err := CalcNextRequiredDifficulty(b.params, b.store, height)
	return bits, height, err
}

// checkHeaderContext ensures the header is at the next height, has a timestamp
// after the median time of the last several blocks and commits to the
// required difficulty.
//
// This function MUST be called with the chain lock held (for reads).
func (b *BlockChain) checkHeaderContext(header *wire.BlockHeader) error {
	// Ensure the header commits to the correct height based on the height it
	// actually connects in the chain.
	height := b.nextHeight()
	if header.Height != height {
		str := fmt.Sprintf("block header commitment to height %d does not "+
			"match chain height %d", header.Height, height)
		return ruleError(ErrBadHeight, str)
	}

	// Ensure the timestamp for the block header is after the median time of
	// the last several blocks.
	if b.tip != nil {
		medianTime, err := medianTimestamp(b.store, b.tip.Height,
			b.params.TimestampMedianWindow)
		if err != nil {
			return err
		}
		if header.Timestamp.Unix() <= medianTime {
			str := fmt.Sprintf("block timestamp of %v is not after "+
				"expected %v", header.Timestamp, time.Unix(medianTime, 0))
			return ruleError(ErrTimeTooOld, str)
		}
	}

	// Ensure the difficulty specified in the block header matches the
	// calculated difficulty based on the previous blocks and difficulty
	// retarget rules.
	expDiff, err := CalcNextRequiredDifficulty(b.params, b.store, height)
	if err != nil {
		return err
	}
	if header.Bits != expDiff {
		scheme := SchemeForHeight(b.params, height)
		str := fmt.Sprintf("block difficulty of %s is not the expected "+
			"value of %s", scheme.Format(header.Bits), scheme.Format(expDiff))
		return ruleError(ErrUnexpectedDifficulty, str)
	}
	return nil
}

// ConnectHeader validates the provided header against the difficulty rules,
// connects it as the new best node of the chain and returns a copy of the new
// node.
//
// This function is safe for concurrent access.
func (b *BlockChain) ConnectHeader(header *wire.BlockHeader) (*BlockNode, error) {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	if err := b.checkHeaderContext(header); err != nil {
		return nil, err
	}
	powHash := b.powHasher(header)
	if err := CheckProofOfWork(b.params, header, &powHash); err != nil {
		return nil, err
	}

	// Accumulate the work of the block into the total work of the chain.
	// The work was already ensured to be valid by the proof of work checks.
	node := &BlockNode{
		Height:    header.Height,
		Timestamp: header.Timestamp.Unix(),
		Bits:      header.Bits,
	}
	if b.tip != nil {
		node.ChainWork = b.tip.ChainWork
	}
	if b.params.IsCompactHeight(node.Height) {
		err := node.ChainWork.AddCompact(difficulty.Compact(node.Bits))
		if err != nil {
			return nil, err
		}
	} else {
		node.ChainWork.AddDifficulty(difficulty.Packed(node.Bits))
	}

	if err := b.store.PutNode(node); err != nil {
		return nil, err
	}

	scheme := SchemeForHeight(b.params, node.Height)
	switch {
	case node.Height == b.params.DifficultyForkHeight && node.Height != 0:
		log.Infof("Difficulty fork activated at height %d with %s "+
			"difficulty %s", node.Height, scheme.Name(),
			scheme.Format(node.Bits))
	case b.tip != nil && b.tip.Bits != node.Bits:
		log.Debugf("Difficulty retarget at height %d from %s to %s",
			node.Height, scheme.Format(b.tip.Bits), scheme.Format(node.Bits))
	}
	b.tip = node

	nodeCopy := *node
	return &nodeCopy, nil
}
