package fststore

import "github.com/ajitpratap0/fstore/pkg/fsttype"

// memColumn holds one column's static shape and values in whichever
// representation its type needs; only the fields matching desc.Type are
// populated.
type memColumn struct {
	name       string
	desc       ColumnDescriptor
	i32        []int32
	i64        []int64
	f64        []float64
	logical    []int8
	bytes      []byte
	strVals    []string
	strMissing []bool
	levelCodes []int32
	levels     []string
}

// memTable is an in-memory TableWriter, standing in for whatever
// dataframe-like structure a real binding would hand Store.Write.
type memTable struct {
	n      int64
	cols   []memColumn
	keyPos []int32
}

func (t *memTable) NrOfColumns() int      { return len(t.cols) }
func (t *memTable) NrOfRows() int64       { return t.n }
func (t *memTable) NrOfKeys() int         { return len(t.keyPos) }
func (t *memTable) KeyColumns() []int32   { return t.keyPos }
func (t *memTable) ColumnName(k int) string { return t.cols[k].name }
func (t *memTable) ColumnType(k int) ColumnDescriptor { return t.cols[k].desc }

func (t *memTable) GetInt32Column(k int) []int32 { return t.cols[k].i32 }
func (t *memTable) GetDoubleColumn(k int) []float64 { return t.cols[k].f64 }
func (t *memTable) GetStringColumn(k int) ([]string, []bool) {
	return t.cols[k].strVals, t.cols[k].strMissing
}
func (t *memTable) GetLevelColumn(k int) ([]int32, []string) {
	return t.cols[k].levelCodes, t.cols[k].levels
}
func (t *memTable) GetLogicalColumn(k int) []int8 { return t.cols[k].logical }
func (t *memTable) GetInt64Column(k int) []int64  { return t.cols[k].i64 }
func (t *memTable) GetByteColumn(k int) []byte    { return t.cols[k].bytes }

// memStringArray is the StringArray a memFactory allocates for CHARACTER
// and FACTOR-level columns on read.
type memStringArray struct {
	vals    []string
	missing []bool
}

func (a *memStringArray) Length() int { return len(a.vals) }
func (a *memStringArray) SetElement(i int, s string, missing bool) {
	a.vals[i] = s
	a.missing[i] = missing
}
func (a *memStringArray) GetElement(i int) (string, bool) { return a.vals[i], a.missing[i] }

type memFactory struct{}

func (memFactory) AllocateInt32(n int) []int32     { return make([]int32, n) }
func (memFactory) AllocateDouble(n int) []float64  { return make([]float64, n) }
func (memFactory) AllocateLogical(n int) []int8    { return make([]int8, n) }
func (memFactory) AllocateInt64(n int) []int64     { return make([]int64, n) }
func (memFactory) AllocateByte(n int) []byte       { return make([]byte, n) }
func (memFactory) AllocateString(n int) StringArray {
	return &memStringArray{vals: make([]string, n), missing: make([]bool, n)}
}

// memResultColumn is one column landed by a Store.Read call into a
// memBuilder, in selection order.
type memResultColumn struct {
	annotation string
	i32        []int32
	i64        []int64
	f64        []float64
	logical    []int8
	bytes      []byte
	strArr     *memStringArray
	levelCodes []int32
	levels     []string
	ordered    bool
	isString   bool
	isLevel    bool
}

type memBuilder struct {
	nRows   int64
	cols    []memResultColumn
	keyIdx  []int32
}

func (b *memBuilder) InitTable(nSelected int, nRows int64) {
	b.nRows = nRows
	b.cols = make([]memResultColumn, nSelected)
}
func (b *memBuilder) SetInt32Column(col []int32, selIndex int, annotation string) {
	b.cols[selIndex] = memResultColumn{i32: col, annotation: annotation}
}
func (b *memBuilder) SetDoubleColumn(col []float64, selIndex int, annotation string) {
	b.cols[selIndex] = memResultColumn{f64: col, annotation: annotation}
}
func (b *memBuilder) SetStringColumn(col StringArray, selIndex int, annotation string) {
	b.cols[selIndex] = memResultColumn{strArr: col.(*memStringArray), annotation: annotation, isString: true}
}
func (b *memBuilder) SetLevelColumn(codes []int32, levels []string, selIndex int, annotation string, ordered bool) {
	b.cols[selIndex] = memResultColumn{levelCodes: codes, levels: levels, annotation: annotation, ordered: ordered, isLevel: true}
}
func (b *memBuilder) SetLogicalColumn(col []int8, selIndex int, annotation string) {
	b.cols[selIndex] = memResultColumn{logical: col, annotation: annotation}
}
func (b *memBuilder) SetInt64Column(col []int64, selIndex int, annotation string) {
	b.cols[selIndex] = memResultColumn{i64: col, annotation: annotation}
}
func (b *memBuilder) SetByteColumn(col []byte, selIndex int, annotation string) {
	b.cols[selIndex] = memResultColumn{bytes: col, annotation: annotation}
}
func (b *memBuilder) SetKeyIndex(positions []int32) { b.keyIdx = positions }

func int32Col(name string, values []int32) memColumn {
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnInt32, Attribute: fsttype.AttrInt32Base}, i32: values}
}

func doubleCol(name string, values []float64) memColumn {
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnDouble64, Attribute: fsttype.AttrDouble64Base}, f64: values}
}

func int64Col(name string, values []int64) memColumn {
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnInt64, Attribute: fsttype.AttrInt64Base}, i64: values}
}

func byteCol(name string, values []byte) memColumn {
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnByte, Attribute: fsttype.AttrByteBase}, bytes: values}
}

func logicalCol(name string, values []int8) memColumn {
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnBool2, Attribute: fsttype.AttrBool2Base}, logical: values}
}

func stringCol(name string, values []string, missing []bool) memColumn {
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnCharacter, Attribute: fsttype.AttrCharacterBase}, strVals: values, strMissing: missing}
}

func factorCol(name string, codes []int32, levels []string, ordered bool) memColumn {
	attr := fsttype.AttrFactorBase
	if ordered {
		attr = fsttype.AttrFactorOrdered
	}
	return memColumn{name: name, desc: ColumnDescriptor{Type: fsttype.ColumnFactor, Attribute: attr, Ordered: ordered}, levelCodes: codes, levels: levels}
}
