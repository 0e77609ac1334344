package codec

import (
	"sync"

	"github.com/ajitpratap0/fstore/pkg/fsterrors"
	"github.com/pierrec/lz4/v4"
)

// sharedLZ4 is the package-wide LZ4 codec instance; it is stateless aside
// from its pooled compressors, so one instance serves every column writer.
var sharedLZ4 = &lz4Codec{}

// hcLevels maps fstore's 0-100 quality scale onto lz4's native 1-9
// high-compression levels (pierrec/lz4 has no finer-grained scale than
// that for CompressorHC).
var hcLevels = [...]lz4.CompressionLevel{
	1: lz4.Level1, 2: lz4.Level2, 3: lz4.Level3,
	4: lz4.Level4, 5: lz4.Level5, 6: lz4.Level6,
	7: lz4.Level7, 8: lz4.Level8, 9: lz4.Level9,
}

// hcLevelIndex converts a 0-100 quality value to an index into hcLevels
// (0 means "use the fast, non-HC compressor" rather than HC level 0).
func hcLevelIndex(quality int) int {
	if quality <= 0 {
		return 0
	}
	idx := (quality*9 + 99) / 100 // ceil(quality/100*9), so quality=100 -> 9
	if idx > 9 {
		idx = 9
	}
	return idx
}

// lz4Codec compresses single blocks with LZ4's block API (not its
// streaming Writer/Reader), since the file format always knows a block's
// uncompressed length up front and doesn't need frame headers. Mirrors
// pkg/compression's lz4Compressor but against lz4.CompressBlock directly.
// Quality 0 uses the fast Compressor (its match-finder hash table is
// pooled as instance state); quality 1-100 uses CompressorHC at the
// corresponding HC level, pooled per level so each goroutine reuses its
// own chain tables instead of reallocating them per block.
type lz4Codec struct {
	fastPool sync.Pool
	hcPools  [10]sync.Pool // indexed 1..9 by HC level; index 0 unused
}

func (c *lz4Codec) Tag() Tag { return TagLZ4 }

func (c *lz4Codec) getFast() *lz4.Compressor {
	if v := c.fastPool.Get(); v != nil {
		return v.(*lz4.Compressor)
	}
	return new(lz4.Compressor)
}

func (c *lz4Codec) putFast(comp *lz4.Compressor) {
	c.fastPool.Put(comp)
}

func (c *lz4Codec) getHC(idx int) *lz4.CompressorHC {
	if v := c.hcPools[idx].Get(); v != nil {
		return v.(*lz4.CompressorHC)
	}
	return &lz4.CompressorHC{Level: hcLevels[idx]}
}

func (c *lz4Codec) putHC(idx int, comp *lz4.CompressorHC) {
	c.hcPools[idx].Put(comp)
}

func (c *lz4Codec) Compress(dst, src []byte, quality int) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(src))
	start := len(dst)
	dst = append(dst, make([]byte, bound)...)

	idx := hcLevelIndex(quality)
	var n int
	var err error
	if idx == 0 {
		comp := c.getFast()
		n, err = comp.CompressBlock(src, dst[start:start+bound])
		c.putFast(comp)
	} else {
		comp := c.getHC(idx)
		n, err = comp.CompressBlock(src, dst[start:start+bound])
		c.putHC(idx, comp)
	}
	if err != nil {
		return nil, fsterrors.Wrap(err, fsterrors.CodecError, "lz4 block compression failed")
	}
	if n == 0 {
		// Incompressible input: CompressBlock declines to expand it.
		// Surface an error and let the caller fall back to
		// TagUncompressed, rather than silently storing garbage.
		return nil, fsterrors.New(fsterrors.CodecError, "lz4 block incompressible").
			WithDetail("srcLen", len(src))
	}
	return dst[:start+n], nil
}

func (c *lz4Codec) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	start := len(dst)
	dst = append(dst, make([]byte, decompressedLen)...)

	n, err := lz4.UncompressBlock(src, dst[start:start+decompressedLen])
	if err != nil {
		return nil, fsterrors.Wrap(err, fsterrors.CodecError, "lz4 block decompression failed")
	}
	if n != decompressedLen {
		return nil, fsterrors.New(fsterrors.CodecError, "lz4 block decompressed to unexpected length").
			WithDetail("got", n).
			WithDetail("want", decompressedLen)
	}
	return dst, nil
}
