// Package column implements the seven column serializers named in the
// column-type table: character, factor, 32-bit integer, double, boolean
// tri-state, 64-bit integer, and byte. Each fixes an element size and a
// block size in elements, then delegates the actual block splitting and
// compression to pkg/blockio. Grounded on fstcore's per-type serializer
// files (double_v9.cpp, integer_v2/integer64_v2, logical_v1, byte_v1,
// character_v1/factor_v7): one source file per logical type rather than a
// single generic[T] implementation, since each type's missing-value
// sentinel and on-disk width differ enough that a shared generic body
// would need as much per-type branching as separate files do.
package column

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ajitpratap0/fstore/pkg/blockio"
	"github.com/ajitpratap0/fstore/pkg/codec"
	"github.com/ajitpratap0/fstore/pkg/fsterrors"
)

// Int32Missing is the canonical sentinel for a missing INT_32 value,
// matching fstcore's use of the type's minimum representable value as NA.
const Int32Missing = math.MinInt32

// Int64Missing is the canonical sentinel for a missing INT_64 value.
const Int64Missing = math.MinInt64

// DoubleMissing is the NaN value used for a missing DOUBLE_64 value.
// WriteDouble64 and ReadDouble64 carry every value's bit pattern
// unchanged, so any NaN payload, this one included, round-trips exactly.
var DoubleMissing = math.NaN()

// WriteInt32 block-compresses values as a column of little-endian int32s.
func WriteInt32(w io.Writer, values []int32, compression int, annotation string) error {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(v))
	}
	policy := codec.PolicyForLevel(compression)
	return blockio.Stream(w, buf, int64(len(values)), 4, blockio.BlockSizeInt, policy, annotation)
}

// ReadInt32 decompresses rows [startRow, startRow+length) of an INT_32
// column previously written by WriteInt32.
func ReadInt32(r io.ReaderAt, blockPos, startRow, length, n int64) ([]int32, string, error) {
	if err := validateRange(startRow, length, n); err != nil {
		return nil, "", err
	}
	raw := make([]byte, length*4)
	res, err := blockio.Read(r, blockPos, startRow, length, n, blockio.BatchSizeReadInt, raw)
	if err != nil {
		return nil, "", err
	}
	out := make([]int32, length)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}
	return out, res.Annotation, nil
}

// WriteInt64 block-compresses values as a column of little-endian int64s.
func WriteInt64(w io.Writer, values []int64, compression int, annotation string) error {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(v))
	}
	policy := codec.PolicyForLevel(compression)
	return blockio.Stream(w, buf, int64(len(values)), 8, blockio.BlockSizeInt64, policy, annotation)
}

// ReadInt64 decompresses rows [startRow, startRow+length) of an INT_64
// column previously written by WriteInt64.
func ReadInt64(r io.ReaderAt, blockPos, startRow, length, n int64) ([]int64, string, error) {
	if err := validateRange(startRow, length, n); err != nil {
		return nil, "", err
	}
	raw := make([]byte, length*8)
	res, err := blockio.Read(r, blockPos, startRow, length, n, blockio.BatchSizeReadInt64, raw)
	if err != nil {
		return nil, "", err
	}
	out := make([]int64, length)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
	}
	return out, res.Annotation, nil
}

// WriteDouble64 block-compresses values as a column of little-endian
// IEEE-754 float64s.
func WriteDouble64(w io.Writer, values []float64, compression int, annotation string) error {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	policy := codec.PolicyForLevel(compression)
	return blockio.Stream(w, buf, int64(len(values)), 8, blockio.BlockSizeReal, policy, annotation)
}

// ReadDouble64 decompresses rows [startRow, startRow+length) of a
// DOUBLE_64 column previously written by WriteDouble64.
func ReadDouble64(r io.ReaderAt, blockPos, startRow, length, n int64) ([]float64, string, error) {
	if err := validateRange(startRow, length, n); err != nil {
		return nil, "", err
	}
	raw := make([]byte, length*8)
	res, err := blockio.Read(r, blockPos, startRow, length, n, blockio.BatchSizeReadReal, raw)
	if err != nil {
		return nil, "", err
	}
	out := make([]float64, length)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
	}
	return out, res.Annotation, nil
}

// WriteByte block-compresses values as a raw byte column; bytes have no
// missing-value sentinel in this engine (a byte column cannot carry NA).
func WriteByte(w io.Writer, values []byte, compression int, annotation string) error {
	policy := codec.PolicyForLevel(compression)
	return blockio.Stream(w, values, int64(len(values)), 1, blockio.BlockSizeByte, policy, annotation)
}

// ReadByte decompresses rows [startRow, startRow+length) of a BYTE column
// previously written by WriteByte.
func ReadByte(r io.ReaderAt, blockPos, startRow, length, n int64) ([]byte, string, error) {
	if err := validateRange(startRow, length, n); err != nil {
		return nil, "", err
	}
	out := make([]byte, length)
	res, err := blockio.Read(r, blockPos, startRow, length, n, blockio.BatchSizeReadByte, out)
	if err != nil {
		return nil, "", err
	}
	return out, res.Annotation, nil
}

func validateRange(startRow, length, n int64) error {
	if length < 0 || startRow < 0 || startRow+length > n {
		return fsterrors.New(fsterrors.BadRange, "row range out of bounds").
			WithDetail("startRow", startRow).
			WithDetail("length", length).
			WithDetail("n", n)
	}
	return nil
}
