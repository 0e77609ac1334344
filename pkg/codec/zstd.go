package codec

import (
	"sync"

	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/klauspost/compress/zstd"
)

// sharedZSTD is the package-wide ZSTD codec instance, pooling encoders and
// decoders the same way pkg/compression's zstdCompressor does.
var sharedZSTD = newZstdCodec()

// zstdPresets are the discrete speed/ratio presets klauspost/compress's
// zstd.Encoder exposes; there is no continuous 1-100 knob, so fstore's
// 0-100 quality scale buckets onto these four.
var zstdPresets = [4]zstd.EncoderLevel{
	zstd.SpeedFastest,
	zstd.SpeedDefault,
	zstd.SpeedBetterCompression,
	zstd.SpeedBestCompression,
}

// presetIndex buckets a 0-100 quality value onto zstdPresets.
func presetIndex(quality int) int {
	switch {
	case quality <= 25:
		return 0
	case quality <= 50:
		return 1
	case quality <= 75:
		return 2
	default:
		return 3
	}
}

// zstdCodec compresses single blocks with zstd.Encoder.EncodeAll /
// zstd.Decoder.DecodeAll against an in-memory slice, rather than the
// streaming Reset(io.Writer) path pkg/compression uses for whole-file
// streams — every call here is one self-contained block. One encoder pool
// per preset avoids reconfiguring an encoder's level on every call.
type zstdCodec struct {
	encoderPools [len(zstdPresets)]sync.Pool
	decoderPool  sync.Pool
}

func newZstdCodec() *zstdCodec {
	c := &zstdCodec{}
	for i := range zstdPresets {
		level := zstdPresets[i]
		c.encoderPools[i].New = func() interface{} {
			enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
			return enc
		}
	}
	c.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	}
	return c
}

func (c *zstdCodec) Tag() Tag { return TagZSTD }

func (c *zstdCodec) Compress(dst, src []byte, quality int) ([]byte, error) {
	idx := presetIndex(quality)
	enc := c.encoderPools[idx].Get().(*zstd.Encoder)
	defer c.encoderPools[idx].Put(enc)

	return enc.EncodeAll(src, dst), nil
}

func (c *zstdCodec) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	dec := c.decoderPool.Get().(*zstd.Decoder)
	defer c.decoderPool.Put(dec)

	out, err := dec.DecodeAll(src, dst)
	if err != nil {
		return nil, fsterrors.Wrap(err, fsterrors.CodecError, "zstd block decompression failed")
	}
	if len(out)-len(dst) != decompressedLen {
		return nil, fsterrors.New(fsterrors.CodecError, "zstd block decompressed to unexpected length").
			WithDetail("got", len(out)-len(dst)).
			WithDetail("want", decompressedLen)
	}
	return out, nil
}
