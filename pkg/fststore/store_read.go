package fststore

import (
	"encoding/binary"
	"os"

	"github.com/ajitpratap0/fstore/pkg/column"
	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/ajitpratap0/fstore/pkg/fstmetrics"
	"github.com/ajitpratap0/fstore/pkg/fsttype"
)

// parsedHeader is everything meta() recovers from nodes A, B, C, and the
// column-names block, plus the byte positions read() needs to locate D.
type parsedHeader struct {
	table       tableHeader
	keys        keyIndex
	chunkset    chunksetHeader
	names       []string
	chunkIdxPos int64
}

func readAndVerifyHeader(f *os.File) (parsedHeader, error) {
	var Abuf [tableHeaderSize]byte
	if _, err := f.ReadAt(Abuf[:], 0); err != nil {
		return parsedHeader{}, fsterrors.Wrap(err, fsterrors.OpenRead, "reading table header")
	}
	A := decodeTableHeader(Abuf[:])
	if err := verifyHash(A.HeaderHash, Abuf[8:], fsterrors.NotFstFile, "table-header"); err != nil {
		return parsedHeader{}, err
	}
	if A.VersionMax > fileVersion {
		return parsedHeader{}, fsterrors.New(fsterrors.UnsupportedVersion, "file format version not supported").
			WithDetail("versionMax", A.VersionMax).
			WithDetail("supported", fileVersion)
	}

	c := int(A.NrOfCols)
	k := int(A.KeyLength)

	var keys keyIndex
	if k > 0 {
		kiBuf := make([]byte, keyIndexSize(k))
		if _, err := f.ReadAt(kiBuf, tableHeaderSize); err != nil {
			return parsedHeader{}, fsterrors.Wrap(err, fsterrors.OpenRead, "reading key index")
		}
		keys = decodeKeyIndex(kiBuf, k)
		if err := verifyHash(keys.Hash, kiBuf[8:], fsterrors.DamagedHeader, "key-index"); err != nil {
			return parsedHeader{}, err
		}
	}

	csBuf := make([]byte, chunksetHeaderSize(c))
	if _, err := f.ReadAt(csBuf, int64(A.PrimaryChunkSetLoc)); err != nil {
		return parsedHeader{}, fsterrors.Wrap(err, fsterrors.OpenRead, "reading chunkset header")
	}
	cs := decodeChunksetHeader(csBuf, c)
	if err := verifyHash(cs.Hash, csBuf[8:], fsterrors.DamagedHeader, "chunkset-header"); err != nil {
		return parsedHeader{}, err
	}

	names, namesNodeSize, err := readColumnNames(f, int64(cs.ColNamesPos), c)
	if err != nil {
		return parsedHeader{}, err
	}

	return parsedHeader{
		table:       A,
		keys:        keys,
		chunkset:    cs,
		names:       names,
		chunkIdxPos: int64(cs.ColNamesPos) + namesNodeSize,
	}, nil
}

// readColumnNames reads the self-describing column-names node: a 24-byte
// fixed header, then a C-entry length-prefix table, then exactly as many
// bulk bytes as those lengths sum to. The node's total size isn't stored
// anywhere else, so it must be derived this way before the chunk index's
// position can be computed.
func readColumnNames(f *os.File, pos int64, c int) ([]string, int64, error) {
	fixed := make([]byte, colNamesHeaderFixed)
	if _, err := f.ReadAt(fixed, pos); err != nil {
		return nil, 0, fsterrors.Wrap(err, fsterrors.OpenRead, "reading column-names header")
	}

	lengthTable := make([]byte, c*4)
	if _, err := f.ReadAt(lengthTable, pos+colNamesHeaderFixed); err != nil {
		return nil, 0, fsterrors.Wrap(err, fsterrors.OpenRead, "reading column-names length table")
	}
	bulkLen := 0
	for i := 0; i < c; i++ {
		bulkLen += int(binary.LittleEndian.Uint32(lengthTable[i*4 : i*4+4]))
	}

	bulk := make([]byte, bulkLen)
	if bulkLen > 0 {
		if _, err := f.ReadAt(bulk, pos+colNamesHeaderFixed+int64(len(lengthTable))); err != nil {
			return nil, 0, fsterrors.Wrap(err, fsterrors.OpenRead, "reading column-names bulk bytes")
		}
	}

	payload := append(lengthTable, bulk...)
	node := append(append([]byte{}, fixed...), payload...)
	hash := binary.LittleEndian.Uint64(node[0:8])
	if err := verifyHash(hash, node[8:], fsterrors.DamagedHeader, "column-names"); err != nil {
		return nil, 0, err
	}

	names, err := decodeColumnNames(payload, c)
	if err != nil {
		return nil, 0, err
	}
	return names, int64(len(node)), nil
}

// Meta opens the store's file and returns its schema — column names,
// types, attributes, scales, row count, version, and key positions —
// without reading any column data.
func (s *Store) Meta() (*Metadata, error) {
	timer := fstmetrics.NewTimer("meta")
	defer timer.Stop()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fsterrors.Wrap(err, fsterrors.OpenRead, "opening file for meta")
	}
	defer f.Close()

	h, err := readAndVerifyHeader(f)
	if err != nil {
		return nil, err
	}

	c := len(h.names)
	types := make([]fsttype.ColumnType, c)
	attrs := make([]fsttype.Attribute, c)
	scales := make([]fsttype.Scale, c)
	for i := 0; i < c; i++ {
		types[i] = wireToColumnType(fsttype.WireType(h.chunkset.ColTypes[i]))
		attrs[i] = fsttype.Attribute(h.chunkset.ColAttributeTypes[i])
		scales[i] = fsttype.Scale(h.chunkset.ColScales[i])
	}

	return &Metadata{
		ColumnNames: h.names,
		Types:       types,
		Attributes:  attrs,
		Scales:      scales,
		NrOfRows:    int64(h.chunkset.NrOfRows),
		Version:     h.table.Version,
		KeyColumns:  h.keys.KeyColPos,
	}, nil
}

func wireToColumnType(w fsttype.WireType) fsttype.ColumnType {
	switch w {
	case fsttype.WireCharacter:
		return fsttype.ColumnCharacter
	case fsttype.WireFactor:
		return fsttype.ColumnFactor
	case fsttype.WireInt32:
		return fsttype.ColumnInt32
	case fsttype.WireDouble64:
		return fsttype.ColumnDouble64
	case fsttype.WireBool2:
		return fsttype.ColumnBool2
	case fsttype.WireInt64:
		return fsttype.ColumnInt64
	case fsttype.WireByte:
		return fsttype.ColumnByte
	default:
		return fsttype.ColumnUnknown
	}
}

// Read opens the store's file, resolves columnSelection (nil/empty means
// all columns in stored order) and the 1-based inclusive row range
// [startRow, endRow] (endRow<0 means "through the last row"), and
// populates builder with the selected data via factory-allocated column
// containers.
func (s *Store) Read(builder TableBuilder, columnSelection []string, startRow, endRow int64, factory ColumnFactory) (err error) {
	timer := fstmetrics.NewTimer("read")
	defer timer.Stop()

	f, openErr := os.Open(s.path)
	if openErr != nil {
		return fsterrors.Wrap(openErr, fsterrors.OpenRead, "opening file for read")
	}
	defer f.Close()

	h, err := readAndVerifyHeader(f)
	if err != nil {
		return err
	}
	c := len(h.names)
	n := int64(h.chunkset.NrOfRows)

	var dBuf [chunkIndexSize]byte
	if _, err := f.ReadAt(dBuf[:], h.chunkIdxPos); err != nil {
		return fsterrors.Wrap(err, fsterrors.OpenRead, "reading chunk index")
	}
	d := decodeChunkIndex(dBuf[:])
	if err := verifyHash(d.Hash, dBuf[8:], fsterrors.DamagedChunkIndex, "chunk-index"); err != nil {
		return err
	}

	eBuf := make([]byte, dataChunkHeaderSize(c))
	if _, err := f.ReadAt(eBuf, int64(d.ChunkPos[0])); err != nil {
		return fsterrors.Wrap(err, fsterrors.OpenRead, "reading data chunk header")
	}
	e := decodeDataChunkHeader(eBuf, c)
	if err := verifyHash(e.Hash, eBuf[8:], fsterrors.DamagedChunkIndex, "data-chunk-header"); err != nil {
		return err
	}

	selPos, err := resolveSelection(h.names, columnSelection)
	if err != nil {
		return err
	}

	firstRow := startRow - 1
	if firstRow < 0 {
		return fsterrors.New(fsterrors.BadRange, "fromRow positive").WithDetail("startRow", startRow)
	}
	if firstRow >= n {
		return fsterrors.New(fsterrors.BadRange, "out of range").WithDetail("startRow", startRow).WithDetail("n", n)
	}
	var length int64
	if endRow >= 0 {
		if endRow <= firstRow {
			return fsterrors.New(fsterrors.BadRange, "toRow must exceed fromRow").
				WithDetail("startRow", startRow).WithDetail("endRow", endRow)
		}
		last := endRow
		if last > n {
			last = n
		}
		length = last - firstRow
	} else {
		length = n - firstRow
	}

	builder.InitTable(len(selPos), length)
	builder.SetKeyIndex(selectedKeyIndex(h.keys.KeyColPos, selPos))

	for selIdx, colIdx := range selPos {
		desc := ColumnDescriptor{
			Type:       wireToColumnType(fsttype.WireType(h.chunkset.ColTypes[colIdx])),
			Attribute:  fsttype.Attribute(h.chunkset.ColAttributeTypes[colIdx]),
			Scale:      fsttype.Scale(h.chunkset.ColScales[colIdx]),
			Annotation: "",
		}
		if err := readColumnInto(f, builder, factory, desc, int64(e.PositionData[colIdx]), firstRow, length, n, selIdx); err != nil {
			return err
		}
	}

	return nil
}

func resolveSelection(names []string, selection []string) ([]int, error) {
	if len(selection) == 0 {
		out := make([]int, len(names))
		for i := range names {
			out[i] = i
		}
		return out, nil
	}
	out := make([]int, len(selection))
	for i, want := range selection {
		found := -1
		for j, name := range names {
			if name == want {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, fsterrors.New(fsterrors.ColumnNotFound, "selected column not found").WithDetail("name", want)
		}
		out[i] = found
	}
	return out, nil
}

// selectedKeyIndex recomputes the key-column positions within a
// selection, stopping at the first original key column not present in
// selPos. This mirrors SetKeyIndex's prefix-only-stop behavior: keys
// [k0,k1,k2] with a selection that keeps k0 and k2 but drops k1 yields
// only [pos(k0)], not [pos(k0), pos(k2)].
func selectedKeyIndex(keyColPos []int32, selPos []int) []int32 {
	if len(keyColPos) == 0 {
		return nil
	}
	origToSel := make(map[int]int, len(selPos))
	for selIdx, origIdx := range selPos {
		origToSel[origIdx] = selIdx
	}
	out := make([]int32, 0, len(keyColPos))
	for _, orig := range keyColPos {
		selIdx, ok := origToSel[int(orig)]
		if !ok {
			break
		}
		out = append(out, int32(selIdx))
	}
	return out
}

func readColumnInto(f *os.File, builder TableBuilder, factory ColumnFactory, desc ColumnDescriptor, blockPos, startRow, length, n int64, selIdx int) error {
	switch desc.Type {
	case fsttype.ColumnInt32:
		values, ann, err := column.ReadInt32(f, blockPos, startRow, length, n)
		if err != nil {
			return err
		}
		col := factory.AllocateInt32(int(length))
		copy(col, values)
		builder.SetInt32Column(col, selIdx, ann)
	case fsttype.ColumnDouble64:
		values, ann, err := column.ReadDouble64(f, blockPos, startRow, length, n)
		if err != nil {
			return err
		}
		col := factory.AllocateDouble(int(length))
		copy(col, values)
		builder.SetDoubleColumn(col, selIdx, ann)
	case fsttype.ColumnInt64:
		values, ann, err := column.ReadInt64(f, blockPos, startRow, length, n)
		if err != nil {
			return err
		}
		col := factory.AllocateInt64(int(length))
		copy(col, values)
		builder.SetInt64Column(col, selIdx, ann)
	case fsttype.ColumnByte:
		values, ann, err := column.ReadByte(f, blockPos, startRow, length, n)
		if err != nil {
			return err
		}
		col := factory.AllocateByte(int(length))
		copy(col, values)
		builder.SetByteColumn(col, selIdx, ann)
	case fsttype.ColumnBool2:
		values, ann, err := column.ReadBool2(f, blockPos, startRow, length, n)
		if err != nil {
			return err
		}
		col := factory.AllocateLogical(int(length))
		copy(col, values)
		builder.SetLogicalColumn(col, selIdx, ann)
	case fsttype.ColumnCharacter:
		return readCharacterInto(f, builder, factory, blockPos, startRow, length, n, selIdx)
	case fsttype.ColumnFactor:
		codes, levels, err := column.ReadFactor(f, blockPos, startRow, length, n)
		if err != nil {
			return err
		}
		builder.SetLevelColumn(codes, levels, selIdx, "", desc.Attribute == fsttype.AttrFactorOrdered)
	default:
		return fsterrors.New(fsterrors.UnknownColumnType, "unrecognized column type on read").
			WithDetail("column", selIdx)
	}
	return nil
}

func readCharacterInto(f *os.File, builder TableBuilder, factory ColumnFactory, blockPos, startRow, length, n int64, selIdx int) error {
	values, missing, ann, err := column.ReadCharacter(f, blockPos, startRow, length, n)
	if err != nil {
		return err
	}
	arr := factory.AllocateString(int(length))
	for i, v := range values {
		arr.SetElement(i, v, missing[i])
	}
	builder.SetStringColumn(arr, selIdx, ann)
	return nil
}
