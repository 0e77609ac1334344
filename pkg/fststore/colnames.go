package fststore

import (
	"encoding/binary"

	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/ajitpratap0/fstore/pkg/fststrings"
)

// encodeColumnNames serializes the dataset's C column names as a
// length-prefix table (one uint32 per name) followed by the concatenated
// UTF-8 bytes — the same string-serializer shape pkg/column uses for
// CHARACTER columns, but kept uncompressed here: the column-names block
// is part of the hashed header tree read on every meta/read call, and at
// typical column counts a block-codec round-trip would cost more than it
// saves.
func encodeColumnNames(names []string) []byte {
	lengths := make([]byte, len(names)*4)
	total := 0
	for i, name := range names {
		binary.LittleEndian.PutUint32(lengths[i*4:i*4+4], uint32(len(name)))
		total += len(name)
	}
	out := make([]byte, len(lengths)+total)
	copy(out, lengths)
	pos := len(lengths)
	for _, name := range names {
		copy(out[pos:], fststrings.StringToBytes(name))
		pos += len(name)
	}
	return out
}

func decodeColumnNames(payload []byte, c int) ([]string, error) {
	lengthTableSize := c * 4
	if len(payload) < lengthTableSize {
		return nil, fsterrors.New(fsterrors.DamagedHeader, "column-names payload shorter than its length-prefix table")
	}
	lengths := payload[:lengthTableSize]
	bulk := payload[lengthTableSize:]

	names := make([]string, c)
	pos := 0
	for i := 0; i < c; i++ {
		l := int(binary.LittleEndian.Uint32(lengths[i*4 : i*4+4]))
		if pos+l > len(bulk) {
			return nil, fsterrors.New(fsterrors.DamagedHeader, "column-names payload truncated")
		}
		names[i] = fststrings.Clone(fststrings.BytesToString(bulk[pos : pos+l]))
		pos += l
	}
	return names, nil
}
