// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package workdb provides a persistent height index of block difficulties,
timestamps and cumulative chain work.

The index is stored in a leveldb database and implements the node store used by
the blockchain package, so a chain created with it resumes from the best node
that was previously connected.  Recently accessed nodes are kept in an LRU cache
since difficulty retargets repeatedly look up the nodes at both ends of the
retarget window along with the nodes of the median time windows.

Every node is keyed by its height and holds the raw difficulty bits of the
header, its timestamp and the cumulative work of the chain up to and including
it.  The database also records the network it was created for and refuses to
open for any other network.

# Errors

Errors returned by this package are either the raw errors provided by
underlying calls or of type workdb.ContextError.  The latter allows the caller
to differentiate between errors from the database and errors due to bad usage
with errors.Is.  Requests for nodes that do not exist are identified by
blockchain.ErrUnknownNode.
*/
package workdb
