package column

import (
	"io"

	"github.com/ajitpratap0/fstore/pkg/blockio"
	"github.com/ajitpratap0/fstore/pkg/codec"
)

// BoolMissing is the BOOL_2 tri-state value for NA: 0 is false, 1 is true,
// 2 (binary "10") is missing, matching fstcore's 2-bit logical encoding.
const BoolMissing = 2

// packBool2 packs 2-bit tri-state values four to a byte, low bits first.
func packBool2(values []int8) []byte {
	packed := make([]byte, (len(values)+3)/4)
	for i, v := range values {
		packed[i/4] |= byte(v&0x3) << uint((i%4)*2)
	}
	return packed
}

func unpackBool2(packed []byte, count int) []int8 {
	out := make([]int8, count)
	for i := 0; i < count; i++ {
		out[i] = int8((packed[i/4] >> uint((i%4)*2)) & 0x3)
	}
	return out
}

// WriteBool2 block-compresses values (each 0, 1, or BoolMissing) packed
// four to a byte before streaming, so a fully-populated logical column
// occupies a quarter of the space a byte-per-value encoding would.
func WriteBool2(w io.Writer, values []int8, compression int, annotation string) error {
	packed := packBool2(values)
	policy := codec.PolicyForLevel(compression)
	return blockio.Stream(w, packed, int64(len(packed)), 1, blockio.BlockSizeBool, policy, annotation)
}

// ReadBool2 decompresses logical rows [startRow, startRow+length) of a
// BOOL_2 column previously written by WriteBool2. n is the column's
// logical element count (not its packed byte count).
func ReadBool2(r io.ReaderAt, blockPos, startRow, length, n int64) ([]int8, string, error) {
	if err := validateRange(startRow, length, n); err != nil {
		return nil, "", err
	}
	if length == 0 {
		res, err := blockio.PeekHeader(r, blockPos)
		return nil, res.Annotation, err
	}

	packedN := (n + 3) / 4
	startByte := startRow / 4
	endByte := (startRow + length - 1) / 4
	packedLen := endByte - startByte + 1

	raw := make([]byte, packedLen)
	res, err := blockio.Read(r, blockPos, startByte, packedLen, packedN, blockio.BatchSizeReadBool, raw)
	if err != nil {
		return nil, "", err
	}

	full := unpackBool2(raw, int(packedLen)*4)
	offset := startRow - startByte*4
	out := make([]int8, length)
	copy(out, full[offset:offset+length])
	return out, res.Annotation, nil
}
