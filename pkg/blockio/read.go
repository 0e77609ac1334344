package blockio

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/fstore/pkg/codec"
	"github.com/ajitpratap0/fstore/pkg/fsterrors"
)

// Result carries the column header fields a caller needs after a read, in
// addition to the decoded row range already copied into its out buffer.
type Result struct {
	Annotation string
	ElemSize   uint32
}

// Read decodes the column header at blockPos, then decompresses and
// copies the rows [startRow, startRow+length) (0-based, already validated
// by the caller) into out. out must be exactly length*elemSize bytes,
// where elemSize is the header's recorded element size — callers that
// don't already know it should peek the header via PeekHeader first.
//
// n is the column's total element count, needed to size the block-index
// table; it is not re-derived from the header, since the header alone
// cannot distinguish a short final block from a full one.
//
// batchSize bounds how many blocks a single system call will read and
// decompress in one pass before copying into out; callers should pass one
// of the BatchSizeRead* constants matching the column's type.
func Read(r io.ReaderAt, blockPos, startRow, length, n, batchSize int64, out []byte) (Result, error) {
	header, headerSize, err := readHeaderAt(r, blockPos)
	if err != nil {
		return Result{}, err
	}
	result := Result{Annotation: header.Annotation, ElemSize: header.ElemSize}

	if length == 0 {
		return result, nil
	}
	if startRow < 0 || startRow+length > n {
		return result, fsterrors.New(fsterrors.BadRange, "requested row range exceeds column length").
			WithDetail("startRow", startRow).
			WithDetail("length", length).
			WithDetail("n", n)
	}
	if int64(len(out)) != length*int64(header.ElemSize) {
		return result, fsterrors.New(fsterrors.BadRange, "output buffer size does not match requested range").
			WithDetail("wantBytes", length*int64(header.ElemSize)).
			WithDetail("gotBytes", len(out))
	}

	nBlocks := numBlocks(n, header.ElemSize, header.BlockSizeElems)
	indexTablePos := blockPos + int64(headerSize)
	indexTableSize := int64(nBlocks) * blockIndexEntrySize

	indexBuf := make([]byte, indexTableSize)
	if _, err := r.ReadAt(indexBuf, indexTablePos); err != nil {
		return result, fsterrors.Wrap(err, fsterrors.DamagedChunkIndex, "reading block index table")
	}

	entries := make([]blockIndexEntry, nBlocks)
	offsets := make([]int64, nBlocks+1)
	for i := 0; i < nBlocks; i++ {
		off := i * blockIndexEntrySize
		entries[i] = blockIndexEntry{
			compressedSize: binary.LittleEndian.Uint32(indexBuf[off : off+4]),
			algoTag:        codec.Tag(indexBuf[off+4]),
		}
		offsets[i+1] = offsets[i] + int64(entries[i].compressedSize)
	}
	payloadsStart := indexTablePos + indexTableSize

	blockSizeElems := int64(header.BlockSizeElems)
	startBlock := startRow / blockSizeElems
	endBlock := (startRow + length - 1) / blockSizeElems

	blockBytes := int(header.BlockSizeElems) * int(header.ElemSize)

	if batchSize <= 0 {
		batchSize = DefaultBatchSizeReadBlocks
	}
	for batchStart := startBlock; batchStart <= endBlock; batchStart += batchSize {
		batchEnd := batchStart + batchSize - 1
		if batchEnd > endBlock {
			batchEnd = endBlock
		}

		batchOff := payloadsStart + offsets[batchStart]
		batchLen := offsets[batchEnd+1] - offsets[batchStart]
		raw := make([]byte, batchLen)
		if _, err := r.ReadAt(raw, batchOff); err != nil {
			return result, fsterrors.Wrap(err, fsterrors.DamagedChunkIndex, "reading block payload batch")
		}

		for b := batchStart; b <= batchEnd; b++ {
			localOff := offsets[b] - offsets[batchStart]
			compressed := raw[localOff : localOff+int64(entries[b].compressedSize)]

			c, err := codec.ForTag(entries[b].algoTag)
			if err != nil {
				return result, err
			}

			scratch := getScratch()
			decoded, err := c.Decompress((*scratch)[:0], compressed, blockBytes)
			if err != nil {
				putScratch(scratch)
				return result, err
			}
			*scratch = decoded

			blockStartRow := b * blockSizeElems
			rowsStart := startRow
			if blockStartRow > rowsStart {
				rowsStart = blockStartRow
			}
			rowsEnd := startRow + length
			if blockStartRow+blockSizeElems < rowsEnd {
				rowsEnd = blockStartRow + blockSizeElems
			}

			srcOff := (rowsStart - blockStartRow) * int64(header.ElemSize)
			dstOff := (rowsStart - startRow) * int64(header.ElemSize)
			span := (rowsEnd - rowsStart) * int64(header.ElemSize)
			copy(out[dstOff:dstOff+span], decoded[srcOff:srcOff+span])

			putScratch(scratch)
		}
	}

	return result, nil
}

// PeekHeader reads just the column header at blockPos, for callers that
// need ElemSize/BlockSizeElems/Annotation before sizing a read buffer.
func PeekHeader(r io.ReaderAt, blockPos int64) (ColumnHeader, error) {
	h, _, err := readHeaderAt(r, blockPos)
	return h, err
}

func readHeaderAt(r io.ReaderAt, blockPos int64) (ColumnHeader, int, error) {
	var fixed [14]byte
	if _, err := r.ReadAt(fixed[:], blockPos); err != nil {
		return ColumnHeader{}, 0, fsterrors.Wrap(err, fsterrors.DamagedChunkIndex, "reading column header")
	}
	h := ColumnHeader{
		Version:        binary.LittleEndian.Uint16(fixed[0:2]),
		ElemSize:       binary.LittleEndian.Uint32(fixed[2:6]),
		BlockSizeElems: binary.LittleEndian.Uint32(fixed[6:10]),
	}
	if h.Version > headerVersion {
		return ColumnHeader{}, 0, fsterrors.New(fsterrors.UnsupportedVersion, "column header version newer than this engine understands").
			WithDetail("version", h.Version)
	}
	annLen := binary.LittleEndian.Uint32(fixed[10:14])
	headerSize := 14 + int(annLen)
	if annLen > 0 {
		ann := make([]byte, annLen)
		if _, err := r.ReadAt(ann, blockPos+14); err != nil {
			return ColumnHeader{}, 0, fsterrors.Wrap(err, fsterrors.DamagedChunkIndex, "reading column header annotation")
		}
		h.Annotation = string(ann)
	}
	return h, headerSize, nil
}
