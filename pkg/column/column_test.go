package column

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seekableBuffer is an in-memory io.WriteSeeker, standing in for the
// *os.File that pkg/fststore hands WriteFactor in production.
type seekableBuffer struct {
	buf []byte
	pos int64
}

func newSeekableBuffer() *seekableBuffer { return &seekableBuffer{} }

func (s *seekableBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func (s *seekableBuffer) Bytes() []byte { return s.buf }

func TestInt32RoundTrip(t *testing.T) {
	values := make([]int32, 5000)
	for i := range values {
		values[i] = int32(i*3 - 1000)
	}
	values[10] = Int32Missing

	var buf bytes.Buffer
	require.NoError(t, WriteInt32(&buf, values, 40, "timestamp"))

	out, ann, err := ReadInt32(bytes.NewReader(buf.Bytes()), 0, 0, int64(len(values)), int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, "timestamp", ann)
	assert.Equal(t, values, out)
}

func TestInt32PartialRange(t *testing.T) {
	values := make([]int32, 3000)
	for i := range values {
		values[i] = int32(i)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInt32(&buf, values, 80, ""))

	out, _, err := ReadInt32(bytes.NewReader(buf.Bytes()), 0, 1200, 500, int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, values[1200:1700], out)
}

func TestInt64RoundTrip(t *testing.T) {
	values := []int64{1, 2, Int64Missing, math.MaxInt64, -1}
	var buf bytes.Buffer
	require.NoError(t, WriteInt64(&buf, values, 90, ""))

	out, _, err := ReadInt64(bytes.NewReader(buf.Bytes()), 0, 0, int64(len(values)), int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, values, out)
}

func TestDouble64RoundTrip(t *testing.T) {
	values := []float64{1.5, -2.25, math.NaN(), 0, math.Inf(1)}
	var buf bytes.Buffer
	require.NoError(t, WriteDouble64(&buf, values, 25, ""))

	out, _, err := ReadDouble64(bytes.NewReader(buf.Bytes()), 0, 0, int64(len(values)), int64(len(values)))
	require.NoError(t, err)
	require.Len(t, out, len(values))
	assert.True(t, math.IsNaN(out[2]))
	assert.Equal(t, values[0], out[0])
	assert.Equal(t, values[4], out[4])
}

func TestByteRoundTrip(t *testing.T) {
	values := make([]byte, 2000)
	for i := range values {
		values[i] = byte(i % 256)
	}
	var buf bytes.Buffer
	require.NoError(t, WriteByte(&buf, values, 60, ""))

	out, _, err := ReadByte(bytes.NewReader(buf.Bytes()), 0, 0, int64(len(values)), int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, values, out)
}

func TestBool2RoundTrip(t *testing.T) {
	values := []int8{0, 1, BoolMissing, 1, 0, 0, 1, BoolMissing, 1}
	var buf bytes.Buffer
	require.NoError(t, WriteBool2(&buf, values, 10, ""))

	out, _, err := ReadBool2(bytes.NewReader(buf.Bytes()), 0, 0, int64(len(values)), int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, values, out)
}

func TestBool2PartialUnaligned(t *testing.T) {
	values := make([]int8, 100)
	for i := range values {
		values[i] = int8(i % 3)
		if values[i] == 2 {
			values[i] = BoolMissing
		}
	}
	var buf bytes.Buffer
	require.NoError(t, WriteBool2(&buf, values, 50, ""))

	out, _, err := ReadBool2(bytes.NewReader(buf.Bytes()), 0, 7, 41, int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, values[7:48], out)
}

func TestCharacterRoundTrip(t *testing.T) {
	values := []string{"alpha", "", "gamma", "missing-slot", "epsilon"}
	missing := []bool{false, false, false, true, false}

	var buf bytes.Buffer
	require.NoError(t, WriteCharacter(&buf, values, missing, 20, "UTF-8"))

	out, gotMissing, ann, err := ReadCharacter(bytes.NewReader(buf.Bytes()), 0, 0, int64(len(values)), int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", ann)
	assert.Equal(t, []bool{false, false, false, true, false}, gotMissing)
	assert.Equal(t, "alpha", out[0])
	assert.Equal(t, "", out[1])
	assert.Equal(t, "gamma", out[2])
	assert.Equal(t, "epsilon", out[4])
}

func TestCharacterPartialRange(t *testing.T) {
	values := []string{"one", "two", "three", "four", "five"}
	var buf bytes.Buffer
	require.NoError(t, WriteCharacter(&buf, values, nil, 0, ""))

	out, missing, _, err := ReadCharacter(bytes.NewReader(buf.Bytes()), 0, 1, 2, int64(len(values)))
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three"}, out)
	assert.Equal(t, []bool{false, false}, missing)
}

func TestFactorRoundTrip(t *testing.T) {
	codes := []int32{1, 2, FactorMissingLevel, 2, 1, 3}
	levels := []string{"low", "medium", "high"}

	sw := newSeekableBuffer()
	require.NoError(t, WriteFactor(sw, codes, levels, 30))

	gotCodes, gotLevels, err := ReadFactor(bytes.NewReader(sw.Bytes()), 0, 0, int64(len(codes)), int64(len(codes)))
	require.NoError(t, err)
	assert.Equal(t, codes, gotCodes)
	assert.Equal(t, levels, gotLevels)
}
