// Copyright (c) 2021 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/decred/dcrd/container/lru"
	"github.com/decred/dcrd/wire"
	"github.com/decred/powdiff/blockchain"
	"github.com/decred/powdiff/difficulty"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	// DefaultCacheSize is the default number of nodes kept in the read cache.
	// It comfortably holds a retarget window along with the median time
	// windows at both of its ends for all of the built-in networks.
	DefaultCacheSize = 1024

	// nodeKeyPrefix is the prefix of the keys of serialized nodes.  The
	// prefix is followed by the big-endian height so iterating the keys
	// yields the nodes in height order.
	nodeKeyPrefix = 'n'

	// nodeKeyLen is the length of a node key.
	nodeKeyLen = 1 + 4

	// serializedNodeLen is the length of a serialized node.  It is the bits,
	// the timestamp and the cumulative work.
	serializedNodeLen = 4 + 8 + difficulty.RawSize
)

var (
	// tipKeyName is the name of the database key used to house the height
	// of the best node.
	tipKeyName = []byte("tip")

	// netKeyName is the name of the database key used to house the network
	// the database was created for.
	netKeyName = []byte("net")
)

// DB is a persistent block node store backed by leveldb.  It implements the
// blockchain.NodeStore interface.
//
// All methods are safe for concurrent access.
type DB struct {
	// These fields are set when the instance is created and are not changed
	// afterward.
	db    *leveldb.DB
	net   wire.CurrencyNet
	cache *lru.Map[uint32, blockchain.BlockNode]

	// tip is the best node.  It is protected by the mutex.
	mtx sync.Mutex
	tip *blockchain.BlockNode
}

// Ensure DB implements the blockchain.NodeStore interface.
var _ blockchain.NodeStore = (*DB)(nil)

// nodeKey returns the database key for the node at the passed height.
func nodeKey(height uint32) []byte {
	var key [nodeKeyLen]byte
	key[0] = nodeKeyPrefix
	binary.BigEndian.PutUint32(key[1:], height)
	return key[:]
}

// serializeNode returns the serialized form of the passed node.  The height is
// not included since it is part of the key.
//
// The serialized format is:
//
//	<bits><timestamp><chain work>
//
//	Field       Type       Size
//	bits        uint32     4
//	timestamp   int64      8
//	chain work  [32]byte   32
//
// The bits and timestamp are little endian while the chain work is kept in its
// big-endian raw form.
func serializeNode(node *blockchain.BlockNode) []byte {
	serialized := make([]byte, serializedNodeLen)
	binary.LittleEndian.PutUint32(serialized[0:4], node.Bits)
	binary.LittleEndian.PutUint64(serialized[4:12], uint64(node.Timestamp))
	copy(serialized[12:], node.ChainWork[:])
	return serialized
}

// deserializeNode decodes the passed serialized node at the passed height.
func deserializeNode(height uint32, serialized []byte) (*blockchain.BlockNode, error) {
	if len(serialized) != serializedNodeLen {
		str := fmt.Sprintf("node at height %d has %d bytes instead of %d",
			height, len(serialized), serializedNodeLen)
		return nil, contextError(ErrDatabaseCorruption, str)
	}

	node := &blockchain.BlockNode{
		Height:    height,
		Bits:      binary.LittleEndian.Uint32(serialized[0:4]),
		Timestamp: int64(binary.LittleEndian.Uint64(serialized[4:12])),
	}
	copy(node.ChainWork[:], serialized[12:])
	return node, nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// Open opens (or creates when needed) the work database at the passed path for
// the passed network.  Up to cacheSize nodes are kept in memory for reads.
func Open(dbPath string, net wire.CurrencyNet, cacheSize uint32) (*DB, error) {
	dbExists := fileExists(dbPath)

	// Open the database (will create it if needed).
	log.Infof("Loading work database from '%s'", dbPath)
	opts := opt.Options{
		ErrorIfExist: !dbExists,
		Strict:       opt.DefaultStrict,
		Compression:  opt.NoCompression,
		Filter:       filter.NewBloomFilter(10),
	}
	ldb, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, convertLdbErr(err, "failed to open work database")
	}

	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	db := &DB{
		db:    ldb,
		net:   net,
		cache: lru.NewMap[uint32, blockchain.BlockNode](cacheSize),
	}
	if err := db.init(); err != nil {
		ldb.Close()
		return nil, err
	}

	if db.tip != nil {
		log.Infof("Work database loaded with best height %d", db.tip.Height)
	} else {
		log.Info("Work database loaded")
	}
	return db, nil
}

// init ensures the database is for the network of the instance, recording it
// when the database is new, and loads the best node.
func (d *DB) init() error {
	var netBytes [4]byte
	binary.LittleEndian.PutUint32(netBytes[:], uint32(d.net))
	serializedNet, err := d.db.Get(netKeyName, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		if err := d.db.Put(netKeyName, netBytes[:], nil); err != nil {
			return convertLdbErr(err, "failed to store network")
		}
		return nil

	case err != nil:
		return convertLdbErr(err, "failed to load network")
	}

	if len(serializedNet) != len(netBytes) {
		str := fmt.Sprintf("network entry has %d bytes instead of %d",
			len(serializedNet), len(netBytes))
		return contextError(ErrDatabaseCorruption, str)
	}
	dbNet := wire.CurrencyNet(binary.LittleEndian.Uint32(serializedNet))
	if dbNet != d.net {
		str := fmt.Sprintf("work database is for network %v instead of %v",
			dbNet, d.net)
		return contextError(ErrNetworkMismatch, str)
	}

	serializedTip, err := d.db.Get(tipKeyName, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return convertLdbErr(err, "failed to load best height")
	}
	if len(serializedTip) != 4 {
		str := fmt.Sprintf("best height entry has %d bytes instead of 4",
			len(serializedTip))
		return contextError(ErrDatabaseCorruption, str)
	}
	tip, err := d.fetchNode(binary.LittleEndian.Uint32(serializedTip))
	if err != nil {
		return err
	}
	d.tip = tip
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return convertLdbErr(err, "failed to close work database")
	}
	return nil
}

// fetchNode loads the node at the passed height from the cache or the
// database.
func (d *DB) fetchNode(height uint32) (*blockchain.BlockNode, error) {
	if node, ok := d.cache.Get(height); ok {
		return &node, nil
	}

	serialized, err := d.db.Get(nodeKey(height), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			str := fmt.Sprintf("block node at height %d is not known", height)
			return nil, contextError(blockchain.ErrUnknownNode, str)
		}
		str := fmt.Sprintf("failed to load node at height %d", height)
		return nil, convertLdbErr(err, str)
	}
	node, err := deserializeNode(height, serialized)
	if err != nil {
		return nil, err
	}
	d.cache.Put(height, *node)
	return node, nil
}

// NodeByHeight returns the node at the passed height.  An error that matches
// blockchain.ErrUnknownNode is returned when there is no such node.
//
// This is part of the blockchain.NodeSource interface.
func (d *DB) NodeByHeight(height uint32) (*blockchain.BlockNode, error) {
	d.mtx.Lock()
	tip := d.tip
	d.mtx.Unlock()
	if tip == nil || height > tip.Height {
		str := fmt.Sprintf("block node at height %d is not known", height)
		return nil, contextError(blockchain.ErrUnknownNode, str)
	}
	return d.fetchNode(height)
}

// PutNode atomically stores the passed node and makes it the best node.  The
// node must be at the height after the current best node.
//
// This is part of the blockchain.NodeStore interface.
func (d *DB) PutNode(node *blockchain.BlockNode) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	var wantHeight uint32
	if d.tip != nil {
		wantHeight = d.tip.Height + 1
	}
	if node.Height != wantHeight {
		str := fmt.Sprintf("node at height %d is not at the next expected "+
			"height %d", node.Height, wantHeight)
		return contextError(ErrNodeOutOfOrder, str)
	}

	var tipBytes [4]byte
	binary.LittleEndian.PutUint32(tipBytes[:], node.Height)
	batch := new(leveldb.Batch)
	batch.Put(nodeKey(node.Height), serializeNode(node))
	batch.Put(tipKeyName, tipBytes[:])
	if err := d.db.Write(batch, nil); err != nil {
		str := fmt.Sprintf("failed to store node at height %d", node.Height)
		return convertLdbErr(err, str)
	}

	nodeCopy := *node
	d.cache.Put(node.Height, nodeCopy)
	d.tip = &nodeCopy
	return nil
}

// Tip returns the best node or nil when the database has no nodes.
//
// This is part of the blockchain.NodeStore interface.
func (d *DB) Tip() (*blockchain.BlockNode, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.tip == nil {
		return nil, nil
	}
	tip := *d.tip
	return &tip, nil
}
