package column

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/fstore/pkg/fsterrors"
)

// FactorMissingLevel is the 1-based level-code sentinel for a missing
// FACTOR value, per fstcore's factor_v7 convention (0 = missing, levels
// are otherwise numbered from 1).
const FactorMissingLevel = 0

// factorSubHeaderSize is the small self-patched prefix WriteFactor writes
// before its two nested streams, so ReadFactor can locate the level
// strings and size its length-prefix table without the caller having to
// persist anything beyond the column's single blockPos — the same
// contract every other column type offers.
const factorSubHeaderSize = 16

// WriteFactor writes a factor column as: a 16-byte sub-header (patched
// after the fact, once the level stream's position and size are known),
// an INT_32 stream of 1-based level codes (FactorMissingLevel for NA),
// then a CHARACTER stream of the level strings in level order. w must
// support Seek because the sub-header's contents aren't known until the
// code stream has been written.
func WriteFactor(w io.WriteSeeker, codes []int32, levels []string, compression int) error {
	headerPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to factor sub-header position")
	}

	header := make([]byte, factorSubHeaderSize)
	if _, err := w.Write(header); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "writing factor sub-header placeholder")
	}

	if err := WriteInt32(w, codes, compression, ""); err != nil {
		return err
	}

	levelsPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to levels stream position")
	}
	if err := WriteCharacter(w, levels, nil, compression, ""); err != nil {
		return err
	}

	endPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking to end of factor column")
	}

	binary.LittleEndian.PutUint32(header[0:4], uint32(len(levels)))
	binary.LittleEndian.PutUint64(header[8:16], uint64(levelsPos))

	if _, err := w.Seek(headerPos, io.SeekStart); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking back to patch factor sub-header")
	}
	if _, err := w.Write(header); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "patching factor sub-header")
	}
	if _, err := w.Seek(endPos, io.SeekStart); err != nil {
		return fsterrors.Wrap(err, fsterrors.WriteError, "seeking past factor column after patch")
	}
	return nil
}

// ReadFactor decompresses rows [startRow, startRow+length) of a factor
// column's level codes, plus the full level-string vector (levels are
// always read in full — there are normally few distinct levels compared
// to rows). blockPos is the column's position as recorded in the data
// chunk header, the same as for any other column type.
func ReadFactor(r io.ReaderAt, blockPos, startRow, length, n int64) (codes []int32, levels []string, err error) {
	var header [factorSubHeaderSize]byte
	if _, err := r.ReadAt(header[:], blockPos); err != nil {
		return nil, nil, fsterrors.Wrap(err, fsterrors.DamagedChunkIndex, "reading factor sub-header")
	}
	nLevels := int64(binary.LittleEndian.Uint32(header[0:4]))
	levelsPos := int64(binary.LittleEndian.Uint64(header[8:16]))

	codesBlockPos := blockPos + factorSubHeaderSize
	codes, _, err = ReadInt32(r, codesBlockPos, startRow, length, n)
	if err != nil {
		return nil, nil, err
	}

	levels, _, _, err = ReadCharacter(r, levelsPos, 0, nLevels, nLevels)
	if err != nil {
		return nil, nil, err
	}

	return codes, levels, nil
}
