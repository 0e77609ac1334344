// Package blockio implements the per-column block streamer: the write and
// read path shared by every column serializer in pkg/column. A column's
// raw element buffer is split into fixed-size blocks, each independently
// compressed under pkg/codec, so a reader can seek to any block without
// decompressing its neighbors. Grounded on the teacher's columnar.Writer/
// Reader pairing in pkg/formats/columnar/columnar.go (explicit
// encoding/binary struct layout, header-then-payload write order) but
// reshaped around block-index seeking rather than columnar's single
// contiguous page per column.
package blockio

import (
	"encoding/binary"
	"sync"

	"github.com/ajitpratap0/fstore/pkg/codec"
)

// Per-type block-element counts, named after fstcore's BLOCKSIZE_* family
// (ifsttypes.h / double_v9.cpp): the number of elements batched into one
// compressible block. Real/int64 columns use fewer, larger elements per
// block than byte columns so that compressed block sizes land in a
// similar range across types.
const (
	BlockSizeReal  = 4 * 1024 // DOUBLE_64
	BlockSizeInt   = 4 * 1024 // INT_32
	BlockSizeInt64 = 4 * 1024 // INT_64 (alias, kept distinct for clarity at call sites)
	BlockSizeByte  = 16 * 1024
	BlockSizeBool  = 16 * 1024 // BOOL_2, packed 2 bits/element
	BlockSizeChar  = 16 * 1024 // character/factor string bulk blocks
)

// Per-type read batch sizes, named after fstcore's BATCH_SIZE_READ_* family
// (double_v9.cpp:81 names BATCH_SIZE_READ_DOUBLE explicitly; the exact
// original constants for the other types weren't present in the retrieved
// sources, so these follow the same inverse relationship BlockSize* already
// establishes — wider elements batch fewer blocks per system call so that
// a batch's total decompressed bytes stay in a similar range across types.
const (
	BatchSizeReadReal  = 32 // DOUBLE_64
	BatchSizeReadInt   = 32 // INT_32
	BatchSizeReadInt64 = 32 // INT_64
	BatchSizeReadByte  = 64
	BatchSizeReadBool  = 64 // BOOL_2
	BatchSizeReadChar  = 64 // character/factor string bulk blocks

	// DefaultBatchSizeReadBlocks is used where no type-specific batch
	// size applies (e.g. reading a key index or other non-columnar
	// block stream).
	DefaultBatchSizeReadBlocks = 64
)

// headerVersion is the column-header format version written by this
// engine; readers reject headers with a higher version than they
// understand (spec UnsupportedVersion).
const headerVersion = 1

// scratchPool holds reusable decompression buffers sized to the largest
// block this engine writes, avoiding an allocation per block on the read
// path. Grounded on pkg/compression's builder-pool idiom (stringpool.
// GetBuilder/PutBuilder), adapted to a plain []byte pool since decompressed
// blocks are copied out before the next block is read.
var scratchPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, BlockSizeReal*8)
		return &b
	},
}

func getScratch() *[]byte {
	return scratchPool.Get().(*[]byte)
}

func putScratch(b *[]byte) {
	*b = (*b)[:0]
	scratchPool.Put(b)
}

// blockIndexEntry is one row of the block-index table: the compressed
// size of a block and the algorithm tag used to produce it. The block's
// file offset is never stored — it is implicit from the position of the
// index table plus the cumulative compressed size of prior blocks.
type blockIndexEntry struct {
	compressedSize uint32
	algoTag        codec.Tag
}

const blockIndexEntrySize = 4 + 1 // compressedSize (uint32) + algoTag (byte)

// ColumnHeader precedes a column's block-index table and block payloads.
// ElemSize and BlockSizeElems let a reader reconstruct block boundaries
// without consulting the serializer that wrote them; Annotation carries a
// unit/timezone string for temporal columns (empty otherwise).
type ColumnHeader struct {
	Version        uint16
	ElemSize       uint32
	BlockSizeElems uint32
	Annotation     string
}

func (h ColumnHeader) encode() []byte {
	ann := []byte(h.Annotation)
	buf := make([]byte, 2+4+4+4+len(ann))
	binary.LittleEndian.PutUint16(buf[0:2], h.Version)
	binary.LittleEndian.PutUint32(buf[2:6], h.ElemSize)
	binary.LittleEndian.PutUint32(buf[6:10], h.BlockSizeElems)
	binary.LittleEndian.PutUint32(buf[10:14], uint32(len(ann)))
	copy(buf[14:], ann)
	return buf
}

func numBlocks(n int64, elemSize, blockSizeElems uint32) int {
	if n <= 0 {
		return 0
	}
	blockBytes := int64(blockSizeElems) * int64(elemSize)
	totalBytes := n * int64(elemSize)
	return int((totalBytes + blockBytes - 1) / blockBytes)
}
