package column

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/fstore/pkg/blockio"
	"github.com/ajitpratap0/fstore/pkg/codec"
	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/ajitpratap0/fstore/pkg/fststrings"
)

// missingStringLength is the length-prefix sentinel marking a missing
// CHARACTER value, distinct from a present empty string (length 0).
const missingStringLength = 0xFFFFFFFF

// blobLenPrefixSize is the width of the uncompressed-blob-length prefix
// WriteCharacter writes ahead of its block stream, so ReadCharacter can
// recover the blob's byte length from blockPos alone — the same
// single-position contract every other column type offers. A string
// column's byte length isn't derivable from its element count or from the
// block index the way a fixed-width numeric column's is.
const blobLenPrefixSize = 8

// WriteCharacter serializes values as a length-prefix table (one uint32
// per element, missingStringLength for a missing entry) followed by the
// concatenated bytes of every present string, writes the combined blob's
// byte length as an 8-byte prefix, then block-compresses the blob as a
// byte stream.
func WriteCharacter(w io.Writer, values []string, missing []bool, compression int, encoding string) error {
	lengths := make([]byte, len(values)*4)
	bulkLen := 0
	for i, s := range values {
		if missing != nil && missing[i] {
			binary.LittleEndian.PutUint32(lengths[i*4:i*4+4], missingStringLength)
			continue
		}
		binary.LittleEndian.PutUint32(lengths[i*4:i*4+4], uint32(len(s)))
		bulkLen += len(s)
	}

	blob := make([]byte, len(lengths)+bulkLen)
	copy(blob, lengths)
	pos := len(lengths)
	for i, s := range values {
		if missing != nil && missing[i] {
			continue
		}
		copy(blob[pos:], fststrings.StringToBytes(s))
		pos += len(s)
	}

	var prefix [blobLenPrefixSize]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(blob)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "writing character blob length prefix")
	}

	policy := codec.PolicyForLevel(compression)
	return blockio.Stream(w, blob, int64(len(blob)), 1, blockio.BlockSizeChar, policy, encoding)
}

// ReadCharacter decompresses the whole character blob and returns the
// strings and missing-mask for rows [startRow, startRow+length). n is the
// column's total element count, used to size the length-prefix table.
// blockPos is the column's position as recorded in the data chunk header;
// the blob's byte length is read from the 8-byte prefix WriteCharacter
// wrote there.
//
// The whole blob is decompressed on every call rather than seeking to a
// sub-range of blocks: string boundaries don't align with fixed-size
// block boundaries the way numeric elements do, so partial-block decoding
// would still need the full length-prefix table to locate an element's
// bytes. This mirrors how fstcore's own character reader materializes an
// entire chunk's string vector rather than a row slice of it.
func ReadCharacter(r io.ReaderAt, blockPos, startRow, length, n int64) ([]string, []bool, string, error) {
	if err := validateRange(startRow, length, n); err != nil {
		return nil, nil, "", err
	}

	var prefix [blobLenPrefixSize]byte
	if _, err := r.ReadAt(prefix[:], blockPos); err != nil {
		return nil, nil, "", fsterrors.Wrap(err, fsterrors.DamagedChunkIndex, "reading character blob length prefix")
	}
	blobLen := int64(binary.LittleEndian.Uint64(prefix[:]))
	streamPos := blockPos + blobLenPrefixSize

	if length == 0 {
		res, err := blockio.PeekHeader(r, streamPos)
		return nil, nil, res.Annotation, err
	}

	raw := make([]byte, blobLen)
	res, err := blockio.Read(r, streamPos, 0, blobLen, blobLen, blockio.BatchSizeReadChar, raw)
	if err != nil {
		return nil, nil, "", err
	}

	lengthTableSize := n * 4
	if int64(len(raw)) < lengthTableSize {
		return nil, nil, "", fsterrors.New(fsterrors.DamagedChunkIndex, "character blob shorter than its length-prefix table")
	}
	lengths := raw[:lengthTableSize]
	bulk := raw[lengthTableSize:]

	out := make([]string, length)
	missing := make([]bool, length)
	bulkOffset := int64(0)
	for i := int64(0); i < n; i++ {
		l := binary.LittleEndian.Uint32(lengths[i*4 : i*4+4])
		isMissing := l == missingStringLength

		if i < startRow || i >= startRow+length {
			if !isMissing {
				bulkOffset += int64(l)
			}
			continue
		}

		idx := i - startRow
		if isMissing {
			missing[idx] = true
			continue
		}
		out[idx] = fststrings.BytesToString(bulk[bulkOffset : bulkOffset+int64(l)])
		bulkOffset += int64(l)
	}

	return out, missing, res.Annotation, nil
}
