// Package codec implements the block-level compressor layer used by
// pkg/blockio: each block written to a data chunk carries its own algorithm
// tag, so a reader can seek straight to a block and decompress it without
// touching its neighbors. Adapted from pkg/compression's Compressor
// interface and algorithm set, narrowed from that package's seven
// stream-oriented algorithms to the two the file format actually needs
// (LZ4 and ZSTD) and reshaped from io.Reader/io.Writer streaming into
// fixed-size block Compress/Decompress calls, since every block's
// uncompressed length is already known from the column's row count and
// type width.
package codec

import "github.com/ajitpratap0/fstore/pkg/fsterrors"

// Tag identifies the algorithm used to compress a single block. It is
// stored alongside the block's compressed size in the block-index table,
// so mixing policies can vary the algorithm block-by-block within one
// column.
type Tag byte

const (
	// TagUncompressed marks a block stored verbatim.
	TagUncompressed Tag = 0
	// TagLZ4 marks a block compressed with LZ4.
	TagLZ4 Tag = 1
	// TagZSTD marks a block compressed with ZSTD.
	TagZSTD Tag = 2
)

func (t Tag) String() string {
	switch t {
	case TagUncompressed:
		return "none"
	case TagLZ4:
		return "lz4"
	case TagZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Codec compresses and decompresses single blocks. Implementations are
// safe for concurrent use, since ForTag hands out one shared Codec per
// algorithm to every caller.
type Codec interface {
	// Tag reports the algorithm tag this codec writes to the block index.
	Tag() Tag

	// Compress appends the compressed form of src to dst and returns the
	// extended slice. quality is the column's compression parameter on a
	// 0-100 scale; implementations map it onto their own native level
	// scale. The caller already knows len(src); Decompress will be told
	// it explicitly, so no length header is embedded here.
	Compress(dst, src []byte, quality int) ([]byte, error)

	// Decompress appends decompressedLen bytes of decompressed output to
	// dst and returns the extended slice.
	Decompress(dst, src []byte, decompressedLen int) ([]byte, error)
}

// ForTag returns the shared Codec for tag, or an error of kind
// fsterrors.CodecError if tag is not recognized.
func ForTag(tag Tag) (Codec, error) {
	switch tag {
	case TagUncompressed:
		return noneCodec{}, nil
	case TagLZ4:
		return sharedLZ4, nil
	case TagZSTD:
		return sharedZSTD, nil
	default:
		return nil, fsterrors.New(fsterrors.CodecError, "unrecognized block algorithm tag").
			WithDetail("tag", byte(tag))
	}
}

type noneCodec struct{}

func (noneCodec) Tag() Tag { return TagUncompressed }

func (noneCodec) Compress(dst, src []byte, _ int) ([]byte, error) {
	return append(dst, src...), nil
}

func (noneCodec) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	if len(src) != decompressedLen {
		return nil, fsterrors.New(fsterrors.CodecError, "uncompressed block length mismatch").
			WithDetail("got", len(src)).
			WithDetail("want", decompressedLen)
	}
	return append(dst, src...), nil
}
