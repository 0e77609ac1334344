package fststore

import "github.com/ajitpratap0/fstore/pkg/fsttype"

// ColumnDescriptor is the static type/attribute/scale/annotation shape of
// one column, as the table writer declares it before any value is
// streamed. Grounded on the collaborator interface in spec §6
// ("ColumnType(k)→(type,attr,scale,annotation)").
type ColumnDescriptor struct {
	Type       fsttype.ColumnType
	Attribute  fsttype.Attribute
	Scale      fsttype.Scale
	Annotation string
	Ordered    bool // meaningful only for FACTOR
}

// TableWriter exposes a dataset to Store.Write: its shape (row/column
// counts, keys) and, per column, both its static descriptor and its
// values in the representation the matching column serializer expects.
// Exactly one Get*Column method is ever called per column, chosen by
// ColumnType(k).Type.
type TableWriter interface {
	NrOfColumns() int
	NrOfRows() int64
	NrOfKeys() int
	KeyColumns() []int32 // 0-based column positions, in key order
	ColumnName(k int) string
	ColumnType(k int) ColumnDescriptor

	GetInt32Column(k int) []int32
	GetDoubleColumn(k int) []float64
	GetStringColumn(k int) (values []string, missing []bool)
	GetLevelColumn(k int) (codes []int32, levels []string)
	GetLogicalColumn(k int) []int8
	GetInt64Column(k int) []int64
	GetByteColumn(k int) []byte
}

// StringArray is the collaborator a ColumnFactory returns for CHARACTER
// and FACTOR-level columns, matching spec §6's "AllocateArray, SetElement,
// GetElement, Length" string-array interface.
type StringArray interface {
	Length() int
	SetElement(i int, s string, missing bool)
	GetElement(i int) (value string, missing bool)
}

// ColumnFactory builds the typed containers a TableBuilder's Set*Column
// calls are handed, given a column's declared length.
type ColumnFactory interface {
	AllocateInt32(n int) []int32
	AllocateDouble(n int) []float64
	AllocateString(n int) StringArray
	AllocateLogical(n int) []int8
	AllocateInt64(n int) []int64
	AllocateByte(n int) []byte
}

// TableBuilder receives the columns Store.Read selects, in selection
// order. InitTable is called exactly once, before any Set*Column call.
type TableBuilder interface {
	InitTable(nSelected int, nRows int64)
	SetInt32Column(col []int32, selIndex int, annotation string)
	SetDoubleColumn(col []float64, selIndex int, annotation string)
	SetStringColumn(col StringArray, selIndex int, annotation string)
	SetLevelColumn(codes []int32, levels []string, selIndex int, annotation string, ordered bool)
	SetLogicalColumn(col []int8, selIndex int, annotation string)
	SetInt64Column(col []int64, selIndex int, annotation string)
	SetByteColumn(col []byte, selIndex int, annotation string)

	// SetKeyIndex records which selected columns (by position within the
	// selection, not the stored column order) are key columns, in key
	// order. Positions stop at the first original key column absent from
	// the selection — a later key present in the selection is not
	// reported, matching the original engine's prefix-only behavior.
	SetKeyIndex(positions []int32)
}

// Metadata is the return value of Store.Meta: everything read from A, B,
// C, and the column-names block, without touching D, E, or any column
// data.
type Metadata struct {
	ColumnNames []string
	Types       []fsttype.ColumnType
	Attributes  []fsttype.Attribute
	Scales      []fsttype.Scale
	NrOfRows    int64
	Version     uint32
	KeyColumns  []int32
}
