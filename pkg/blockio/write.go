package blockio

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/fstore/pkg/codec"
	"github.com/ajitpratap0/fstore/pkg/fsterrors"
)

// Stream writes one column's block-compressed payload to w: a ColumnHeader,
// a block-index table, then the concatenated compressed block payloads.
// buf holds n elements of elemSize bytes each (already in their on-disk
// byte representation — pkg/column is responsible for that encoding).
// The final block is zero-padded to a full blockSizeElems before
// compression, per the block-size contract.
func Stream(w io.Writer, buf []byte, n int64, elemSize, blockSizeElems uint32, policy codec.Policy, annotation string) error {
	header := ColumnHeader{
		Version:        headerVersion,
		ElemSize:       elemSize,
		BlockSizeElems: blockSizeElems,
		Annotation:     annotation,
	}
	if _, err := w.Write(header.encode()); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "writing column header")
	}

	nBlocks := numBlocks(n, elemSize, blockSizeElems)
	if nBlocks == 0 {
		return nil
	}

	blockBytes := int(blockSizeElems) * int(elemSize)
	entries := make([]blockIndexEntry, nBlocks)
	payloads := make([][]byte, nBlocks)

	for i := 0; i < nBlocks; i++ {
		start := i * blockBytes
		end := start + blockBytes
		var raw []byte
		if end <= len(buf) {
			raw = buf[start:end]
		} else {
			// final short block: pad with zero bytes
			padded := make([]byte, blockBytes)
			if start < len(buf) {
				copy(padded, buf[start:])
			}
			raw = padded
		}

		tag := policy.TagFor(i)
		level := policy.LevelFor(i)
		c, err := codec.ForTag(tag)
		if err != nil {
			return err
		}

		compressed, err := c.Compress(nil, raw, level)
		if err != nil {
			// An incompressible block under a lossy codec choice (e.g.
			// LZ4 declining to shrink high-entropy input) falls back to
			// storing it raw rather than failing the whole column.
			if tag != codec.TagUncompressed {
				none, _ := codec.ForTag(codec.TagUncompressed)
				compressed, err = none.Compress(nil, raw, 0)
				tag = codec.TagUncompressed
			}
			if err != nil {
				return fsterrors.Wrap(err, fsterrors.CodecError, "compressing block").
					WithDetail("block", i)
			}
		}

		entries[i] = blockIndexEntry{compressedSize: uint32(len(compressed)), algoTag: tag}
		payloads[i] = compressed
	}

	indexBuf := make([]byte, nBlocks*blockIndexEntrySize)
	for i, e := range entries {
		off := i * blockIndexEntrySize
		binary.LittleEndian.PutUint32(indexBuf[off:off+4], e.compressedSize)
		indexBuf[off+4] = byte(e.algoTag)
	}
	if _, err := w.Write(indexBuf); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "writing block index table")
	}

	for i, p := range payloads {
		if _, err := w.Write(p); err != nil {
			return fsterrors.Wrap(err, fsterrors.WriteError, "writing block payload").
				WithDetail("block", i)
		}
	}
	return nil
}
