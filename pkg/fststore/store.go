package fststore

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/ajitpratap0/fstore/pkg/column"
	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/ajitpratap0/fstore/pkg/fsthash"
	"github.com/ajitpratap0/fstore/pkg/fstlog"
	"github.com/ajitpratap0/fstore/pkg/fstmetrics"
	"github.com/ajitpratap0/fstore/pkg/fsttype"
	"go.uber.org/zap"
)

// Store is a handle to a single file path. It carries no open file
// descriptor or other state between calls — Write, Meta, and Read each
// open, operate, and close independently, matching the single-threaded,
// self-contained operation model of spec §5.
type Store struct {
	path string
}

// Open returns a Store bound to path. It does not touch the filesystem;
// Write, Meta, and Read each open path themselves.
func Open(path string) *Store {
	return &Store{path: path}
}

// Write serializes table to the store's path with the given block
// compression level (0-100). It overwrites any existing file at path.
func (s *Store) Write(table TableWriter, compression int) (err error) {
	timer := fstmetrics.NewTimer("write")
	defer timer.Stop()

	c := table.NrOfColumns()
	n := table.NrOfRows()
	k := table.NrOfKeys()

	if c <= 0 {
		return fsterrors.New(fsterrors.NoColumns, "write requires at least one column")
	}
	if n <= 0 {
		return fsterrors.New(fsterrors.NoData, "write requires at least one row")
	}

	f, openErr := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if openErr != nil {
		return fsterrors.Wrap(openErr, fsterrors.OpenWrite, "opening file for write")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fsterrors.Wrap(closeErr, fsterrors.WriteError, "closing file after write; file may be corrupt")
		}
	}()

	names := make([]string, c)
	descriptors := make([]ColumnDescriptor, c)
	colAttr := make([]uint16, c)
	colTypes := make([]uint16, c)
	colBase := make([]uint16, c)
	colScales := make([]uint16, c)
	for i := 0; i < c; i++ {
		names[i] = table.ColumnName(i)
		d := table.ColumnType(i)
		descriptors[i] = d
		wire, ok := d.Type.ToWireType()
		if !ok {
			return fsterrors.New(fsterrors.UnknownColumnType, "unrecognized column type on write").
				WithDetail("column", i)
		}
		colTypes[i] = uint16(wire)
		colBase[i] = uint16(wire)
		colAttr[i] = uint16(d.Attribute)
		colScales[i] = uint16(d.Scale)
	}

	keyColPos := table.KeyColumns()
	namesPayload := encodeColumnNames(names)

	primaryChunkSetLoc := uint64(tableHeaderSize + keyIndexSize(k))
	colNamesPos := primaryChunkSetLoc + uint64(chunksetHeaderSize(c))
	chunkIdxPos := colNamesPos + uint64(colNamesHeaderSize(len(namesPayload)))
	dataChunkPos := chunkIdxPos + uint64(chunkIndexSize)

	A := tableHeader{
		Version:            fileVersion,
		VersionMax:         fileVersion,
		NrOfCols:           int32(c),
		PrimaryChunkSetLoc: primaryChunkSetLoc,
		KeyLength:          int32(k),
	}
	Abuf := A.encode()

	var Bbuf []byte
	if k > 0 {
		Bbuf = (keyIndex{KeyColPos: keyColPos}).encode()
	}

	Cbuf := (chunksetHeader{
		Version:           fileVersion,
		ColNamesPos:       colNamesPos,
		NrOfRows:          uint64(n),
		NrOfChunksetCols:  int32(c),
		ColAttributeTypes: colAttr,
		ColTypes:          colTypes,
		ColBaseTypes:      colBase,
		ColScales:         colScales,
	}).encode()

	namesBuf := (colNamesHeader{Version: fileVersion, Payload: namesPayload}).encode()

	Dbuf := (chunkIndex{
		Version:        fileVersion,
		NrOfChunkSlots: maxChunkSlots,
		ChunkPos:       [maxChunkSlots]uint64{dataChunkPos},
		ChunkRows:      [maxChunkSlots]uint64{uint64(n)},
	}).encode()

	Ebuf := (dataChunkHeader{Version: fileVersion, PositionData: make([]uint64, c)}).encode()

	for _, chunk := range [][]byte{Abuf, Bbuf, Cbuf, namesBuf, Dbuf, Ebuf} {
		if len(chunk) == 0 {
			continue
		}
		if _, err := f.Write(chunk); err != nil {
			return fsterrors.Wrap(err, fsterrors.WriteError, "writing header placeholder")
		}
	}

	positionData := make([]uint64, c)
	for i := 0; i < c; i++ {
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to column position")
		}
		positionData[i] = uint64(pos)
		if err := writeColumn(f, table, i, descriptors[i], compression); err != nil {
			return err
		}
	}
	endPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to end of column data")
	}

	binary.LittleEndian.PutUint64(Abuf[0:8], fsthash.Node(Abuf[8:]))
	if k > 0 {
		binary.LittleEndian.PutUint64(Bbuf[0:8], fsthash.Node(Bbuf[8:]))
	}
	binary.LittleEndian.PutUint64(Cbuf[0:8], fsthash.Node(Cbuf[8:]))
	binary.LittleEndian.PutUint64(namesBuf[0:8], fsthash.Node(namesBuf[8:]))

	Ebuf = (dataChunkHeader{Version: fileVersion, PositionData: positionData}).encode()
	binary.LittleEndian.PutUint64(Ebuf[0:8], fsthash.Node(Ebuf[8:]))
	binary.LittleEndian.PutUint64(Dbuf[0:8], fsthash.Node(Dbuf[8:]))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to patch header")
	}
	for _, chunk := range [][]byte{Abuf, Bbuf, Cbuf, namesBuf} {
		if len(chunk) == 0 {
			continue
		}
		if _, err := f.Write(chunk); err != nil {
			return fsterrors.Wrap(err, fsterrors.WriteError, "patching header")
		}
	}

	if _, err := f.Seek(int64(chunkIdxPos), io.SeekStart); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to patch chunk index")
	}
	if _, err := f.Write(Dbuf); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "patching chunk index")
	}
	if _, err := f.Write(Ebuf); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "patching data chunk header")
	}

	fstlog.Get().Debug("write complete",
		zap.String("path", s.path), zap.Int("columns", c), zap.Int64("rows", n), zap.Int("compression", compression))
	fstmetrics.BytesWritten.Add(float64(endPos))

	return nil
}

func writeColumn(w io.WriteSeeker, table TableWriter, k int, desc ColumnDescriptor, compression int) error {
	switch desc.Type {
	case fsttype.ColumnInt32:
		return column.WriteInt32(w, table.GetInt32Column(k), compression, desc.Annotation)
	case fsttype.ColumnDouble64:
		return column.WriteDouble64(w, table.GetDoubleColumn(k), compression, desc.Annotation)
	case fsttype.ColumnInt64:
		return column.WriteInt64(w, table.GetInt64Column(k), compression, desc.Annotation)
	case fsttype.ColumnByte:
		return column.WriteByte(w, table.GetByteColumn(k), compression, desc.Annotation)
	case fsttype.ColumnBool2:
		return column.WriteBool2(w, table.GetLogicalColumn(k), compression, desc.Annotation)
	case fsttype.ColumnCharacter:
		values, missing := table.GetStringColumn(k)
		return column.WriteCharacter(w, values, missing, compression, desc.Annotation)
	case fsttype.ColumnFactor:
		codes, levels := table.GetLevelColumn(k)
		return column.WriteFactor(w, codes, levels, compression)
	default:
		return fsterrors.New(fsterrors.UnknownColumnType, "unrecognized column type on write").
			WithDetail("column", k)
	}
}
