package fststore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/ajitpratap0/fstore/pkg/fsttype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, table *memTable, compression int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.fst")
	require.NoError(t, Open(path).Write(table, compression))
	return path
}

// TestScenarioS1RoundTripAndRange covers spec scenario S1: a single INT_32
// column, no keys, c=0.
func TestScenarioS1RoundTripAndRange(t *testing.T) {
	table := &memTable{n: 3, cols: []memColumn{int32Col("v", []int32{1, 2, 3})}}
	path := writeTable(t, table, 0)

	meta, err := Open(path).Meta()
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.NrOfRows)
	assert.Equal(t, 1, len(meta.ColumnNames))
	assert.Equal(t, fsttype.ColumnInt32, meta.Types[0])

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, nil, 2, 3, memFactory{}))
	assert.Equal(t, []int32{2, 3}, b.cols[0].i32)
}

// TestScenarioS2DoubleSpecialValues covers spec scenario S2.
func TestScenarioS2DoubleSpecialValues(t *testing.T) {
	values := []float64{math.NaN(), 1.5, math.Copysign(0, -1)}
	table := &memTable{n: 3, cols: []memColumn{doubleCol("d", values)}}
	path := writeTable(t, table, 50)

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, nil, 1, 3, memFactory{}))
	require.Len(t, b.cols[0].f64, 3)
	assert.True(t, math.IsNaN(b.cols[0].f64[0]))
	assert.Equal(t, 1.5, b.cols[0].f64[1])
	assert.Equal(t, math.Copysign(0, -1), b.cols[0].f64[2])
	assert.True(t, math.Signbit(b.cols[0].f64[2]))
}

// TestScenarioS3CharacterUTF8 covers spec scenario S3.
func TestScenarioS3CharacterUTF8(t *testing.T) {
	values := []string{"", "a", "αβ"}
	col := stringCol("s", values, []bool{false, false, false})
	col.desc.Annotation = "UTF-8"
	table := &memTable{n: 3, cols: []memColumn{col}}
	path := writeTable(t, table, 75)

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, nil, 1, 3, memFactory{}))
	require.NotNil(t, b.cols[0].strArr)
	assert.Equal(t, "UTF-8", b.cols[0].annotation)
	for i, want := range values {
		got, missing := b.cols[0].strArr.GetElement(i)
		assert.False(t, missing)
		assert.Equal(t, want, got)
	}
}

// TestScenarioS4FactorOrdered covers spec scenario S4.
func TestScenarioS4FactorOrdered(t *testing.T) {
	levels := []string{"low", "mid", "high"}
	codes := []int32{1, 3, 0, 2}
	table := &memTable{n: 4, cols: []memColumn{factorCol("f", codes, levels, true)}}
	path := writeTable(t, table, 0)

	meta, err := Open(path).Meta()
	require.NoError(t, err)
	assert.Equal(t, fsttype.AttrFactorOrdered, meta.Attributes[0])

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, nil, 1, 4, memFactory{}))
	assert.True(t, b.cols[0].ordered)
	assert.Equal(t, codes, b.cols[0].levelCodes)
	assert.Equal(t, levels, b.cols[0].levels)
}

// TestScenarioS5OneOfEachType covers spec scenario S5: N=1, one column per
// type, c=100.
func TestScenarioS5OneOfEachType(t *testing.T) {
	table := &memTable{n: 1, cols: []memColumn{
		int32Col("i32", []int32{42}),
		doubleCol("f64", []float64{3.14}),
		int64Col("i64", []int64{123456789012}),
		byteCol("byte", []byte{7}),
		logicalCol("bool", []int8{1}),
		stringCol("str", []string{"hello"}, []bool{false}),
		factorCol("fac", []int32{1}, []string{"only"}, false),
	}}
	path := writeTable(t, table, 100)

	meta, err := Open(path).Meta()
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.NrOfRows)
	assert.Equal(t, 7, len(meta.ColumnNames))

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, nil, 1, 1, memFactory{}))
	require.Len(t, b.cols, 7)
	assert.Equal(t, []int32{42}, b.cols[0].i32)
	assert.Equal(t, []float64{3.14}, b.cols[1].f64)
	assert.Equal(t, []int64{123456789012}, b.cols[2].i64)
	assert.Equal(t, []byte{7}, b.cols[3].bytes)
	assert.Equal(t, []int8{1}, b.cols[4].logical)
	gotStr, missing := b.cols[5].strArr.GetElement(0)
	assert.False(t, missing)
	assert.Equal(t, "hello", gotStr)
	assert.Equal(t, []int32{1}, b.cols[6].levelCodes)
	assert.Equal(t, []string{"only"}, b.cols[6].levels)
}

// TestScenarioS6ErrorCases covers spec scenario S6's four rejected inputs.
func TestScenarioS6ErrorCases(t *testing.T) {
	table := &memTable{n: 3, cols: []memColumn{int32Col("v", []int32{1, 2, 3})}}
	path := writeTable(t, table, 0)

	var b memBuilder
	err := Open(path).Read(&b, []string{"missing"}, 1, 3, memFactory{})
	assert.True(t, fsterrors.Is(err, fsterrors.ColumnNotFound))

	err = Open(path).Read(&b, nil, 0, 3, memFactory{})
	assert.True(t, fsterrors.Is(err, fsterrors.BadRange))

	err = Open(path).Read(&b, nil, 3, 2, memFactory{})
	assert.True(t, fsterrors.Is(err, fsterrors.BadRange))

	err = Open(path).Read(&b, nil, 10, 12, memFactory{})
	assert.True(t, fsterrors.Is(err, fsterrors.BadRange))
}

func TestSelectiveRoundTrip(t *testing.T) {
	table := &memTable{n: 10, cols: []memColumn{
		int32Col("a", []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}),
		doubleCol("b", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}),
		stringCol("c", []string{"z0", "z1", "z2", "z3", "z4", "z5", "z6", "z7", "z8", "z9"}, nil),
	}}
	path := writeTable(t, table, 30)

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, []string{"c", "a"}, 3, 6, memFactory{}))
	require.Len(t, b.cols, 2)
	assert.Equal(t, int64(4), b.nRows)

	for i, want := range []string{"z2", "z3", "z4", "z5"} {
		got, missing := b.cols[0].strArr.GetElement(i)
		assert.False(t, missing)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, []int32{2, 3, 4, 5}, b.cols[1].i32)
}

func TestKeyPrefixPreservation(t *testing.T) {
	table := &memTable{
		n: 3,
		cols: []memColumn{
			int32Col("k0", []int32{1, 2, 3}),
			int32Col("k1", []int32{4, 5, 6}),
			int32Col("k2", []int32{7, 8, 9}),
			int32Col("v", []int32{10, 11, 12}),
		},
		keyPos: []int32{0, 1, 2},
	}
	path := writeTable(t, table, 0)

	meta, err := Open(path).Meta()
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2}, meta.KeyColumns)

	var b memBuilder
	require.NoError(t, Open(path).Read(&b, []string{"k0", "k2", "v"}, 1, 3, memFactory{}))
	assert.Equal(t, []int32{0}, b.keyIdx)
}

func TestIdempotence(t *testing.T) {
	table := &memTable{n: 5, cols: []memColumn{
		int32Col("a", []int32{1, 2, 3, 4, 5}),
		stringCol("b", []string{"x", "y", "z", "w", "q"}, nil),
	}}

	dir := t.TempDir()
	path1 := filepath.Join(dir, "one.fst")
	path2 := filepath.Join(dir, "two.fst")
	require.NoError(t, Open(path1).Write(table, 40))
	require.NoError(t, Open(path2).Write(table, 40))

	b1, err := os.ReadFile(path1)
	require.NoError(t, err)
	b2, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestCompressionMonotonicity(t *testing.T) {
	values := make([]int32, 20000)
	for i := range values {
		values[i] = int32(i % 7) // highly redundant, compresses well
	}
	table := &memTable{n: int64(len(values)), cols: []memColumn{int32Col("v", values)}}

	dir := t.TempDir()
	sizeAt := func(c int) int64 {
		path := filepath.Join(dir, "sz.fst")
		require.NoError(t, Open(path).Write(table, c))
		info, err := os.Stat(path)
		require.NoError(t, err)
		return info.Size()
	}

	s0 := sizeAt(0)
	s50 := sizeAt(50)
	s100 := sizeAt(100)
	assert.LessOrEqual(t, s50, s0)
	assert.LessOrEqual(t, s100, s50)
}

func TestHashCoverageTableHeaderCorruption(t *testing.T) {
	table := &memTable{n: 3, cols: []memColumn{int32Col("v", []int32{1, 2, 3})}}
	path := writeTable(t, table, 0)
	flipByte(t, path, 20)

	_, err := Open(path).Meta()
	assert.True(t, fsterrors.Is(err, fsterrors.NotFstFile))
}

func TestHashCoverageChunksetHeaderCorruption(t *testing.T) {
	table := &memTable{n: 3, cols: []memColumn{int32Col("v", []int32{1, 2, 3})}}
	path := writeTable(t, table, 0)

	primaryChunkSetLoc := tableHeaderSize + keyIndexSize(0)
	flipByte(t, path, int64(primaryChunkSetLoc+30))

	_, err := Open(path).Meta()
	assert.True(t, fsterrors.Is(err, fsterrors.DamagedHeader))
}

func TestHashCoverageColumnNamesCorruption(t *testing.T) {
	table := &memTable{n: 3, cols: []memColumn{int32Col("v", []int32{1, 2, 3})}}
	path := writeTable(t, table, 0)

	primaryChunkSetLoc := tableHeaderSize + keyIndexSize(0)
	colNamesPos := primaryChunkSetLoc + chunksetHeaderSize(1)
	flipByte(t, path, int64(colNamesPos+15))

	_, err := Open(path).Meta()
	assert.True(t, fsterrors.Is(err, fsterrors.DamagedHeader))
}

func TestHashCoverageChunkIndexAndDataChunkCorruption(t *testing.T) {
	table := &memTable{n: 3, cols: []memColumn{int32Col("v", []int32{1, 2, 3})}}
	path := writeTable(t, table, 0)

	primaryChunkSetLoc := tableHeaderSize + keyIndexSize(0)
	colNamesPos := primaryChunkSetLoc + chunksetHeaderSize(1)
	namesPayload := encodeColumnNames([]string{"v"})
	chunkIdxPos := colNamesPos + colNamesHeaderSize(len(namesPayload))
	dataChunkPos := chunkIdxPos + chunkIndexSize

	flipByte(t, path, int64(chunkIdxPos+10))
	var b memBuilder
	err := Open(path).Read(&b, nil, 1, 3, memFactory{})
	assert.True(t, fsterrors.Is(err, fsterrors.DamagedChunkIndex))
	unflipByte(t, path, int64(chunkIdxPos+10))

	flipByte(t, path, int64(dataChunkPos+10))
	err = Open(path).Read(&b, nil, 1, 3, memFactory{})
	assert.True(t, fsterrors.Is(err, fsterrors.DamagedChunkIndex))
}

func flipByte(t *testing.T, path string, offset int64) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()
	var b [1]byte
	_, err = f.ReadAt(b[:], offset)
	require.NoError(t, err)
	b[0] ^= 0xFF
	_, err = f.WriteAt(b[:], offset)
	require.NoError(t, err)
}

func unflipByte(t *testing.T, path string, offset int64) {
	t.Helper()
	flipByte(t, path, offset) // XOR 0xFF is its own inverse
}

func TestWriteRejectsEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.fst")
	err := Open(path).Write(&memTable{n: 0, cols: []memColumn{int32Col("v", nil)}}, 0)
	assert.True(t, fsterrors.Is(err, fsterrors.NoData))

	err = Open(path).Write(&memTable{n: 3, cols: nil}, 0)
	assert.True(t, fsterrors.Is(err, fsterrors.NoColumns))
}
