// Package fstore implements a columnar on-disk storage format: a hashed
// tree of fixed-layout header nodes wrapping per-column, block-compressed
// data streams. A reader can verify the file's structure, read a table's
// schema, and materialize an arbitrary column/row-range selection without
// decompressing columns it didn't ask for.
//
// # Architecture
//
// A store's header is six node types, each independently hashed with a
// seeded xxHash-64 and verified on read before its bytes are trusted:
//
//	table header    (A) - version, column count, key count
//	key index       (B) - key column positions, present iff K>0
//	chunkset header (C) - per-column type/attribute/scale, row count
//	column names      - length-prefixed column-name table
//	chunk index     (D) - chunk slot table (one slot populated)
//	data chunk header (E) - per-column byte offset into the file
//
// Each column's bytes, at the offset node E records for it, are an
// independent block stream: a small header, a block-index table (one
// compressed size + algorithm tag per block), then the compressed block
// payloads themselves. A reader seeks straight to the blocks covering a
// requested row range and decompresses only those.
//
// # Key packages
//
//	pkg/fststore   - the hashed header tree and Store.Write/Meta/Read
//	pkg/column     - per-type serializers (character, factor, int32,
//	                 double64, bool2, int64, byte)
//	pkg/blockio    - the block splitter/streamer shared by every column
//	pkg/codec      - LZ4/ZSTD block compressors and block-mixing policies
//	pkg/fsthash    - the header-node hash function
//	pkg/fsttype    - column type, attribute, and scale enumerations
//	pkg/fsterrors  - the structured error type raised across the engine
//
// # Compression
//
// A column's blocks can mix compression algorithms deterministically by
// block index, so a given store always seeks and decompresses the same
// way regardless of what values happen to be in a block. See pkg/codec's
// Policy implementations for the mixing rules.
package fstore
