package codec

// Policy chooses the algorithm tag and quality level for a given block,
// purely as a function of its index within the column's block stream.
// Keeping the choice index-driven (never content-driven) is what lets a
// reader seek straight to block N and decompress it without having first
// read blocks 0..N-1: nothing about the algorithm choice depends on what
// came before.
type Policy interface {
	// TagFor returns the algorithm tag to use for the block at blockIndex.
	TagFor(blockIndex int) Tag

	// LevelFor returns the 0-100 quality level to pass to that tag's
	// Codec.Compress for the block at blockIndex.
	LevelFor(blockIndex int) int
}

// Single always picks the same algorithm and quality level, used for
// compression level 0 (store blocks uncompressed).
type Single struct {
	Tag   Tag
	Level int
}

func (s Single) TagFor(int) Tag   { return s.Tag }
func (s Single) LevelFor(int) int { return s.Level }

// LinearMix interleaves Compressed and TagUncompressed so that, across any
// prefix of the block stream, the fraction of blocks tagged Compressed
// converges to RatioPercent/100. Grounded on fstcore's double_v9.cpp
// dispatch for compression levels 1-50: a StreamLinearCompressor mixing an
// uncompressed pass-through with a SingleCompressor(LZ4, 2*compression) at
// a ratio of 2*compression — the same 2*compression value drives both the
// mixing ratio and the LZ4 quality level, which is why Level and
// RatioPercent below are set to the same number in PolicyForLevel.
type LinearMix struct {
	Compressed   Tag
	RatioPercent int
	Level        int
}

func (m LinearMix) TagFor(blockIndex int) Tag {
	if bresenhamHit(blockIndex, m.RatioPercent) {
		return m.Compressed
	}
	return TagUncompressed
}

func (m LinearMix) LevelFor(int) int { return m.Level }

// CompositeMix interleaves two compressed algorithms (never falling back to
// uncompressed) so that First is used for RatioPercent/100 of blocks and
// Second for the remainder, each at its own fixed quality level. Grounded
// on fstcore's double_v9.cpp dispatch for compression levels 51-100: a
// StreamCompositeCompressor mixing SingleCompressor(ZSTD, 20) and
// SingleCompressor(LZ4, 100) at a ratio of 2*(compression-50), so First
// should always be the heavier of the two algorithms.
type CompositeMix struct {
	First, Second           Tag
	FirstLevel, SecondLevel int
	RatioPercent            int
}

func (m CompositeMix) TagFor(blockIndex int) Tag {
	if bresenhamHit(blockIndex, m.RatioPercent) {
		return m.First
	}
	return m.Second
}

func (m CompositeMix) LevelFor(blockIndex int) int {
	if bresenhamHit(blockIndex, m.RatioPercent) {
		return m.FirstLevel
	}
	return m.SecondLevel
}

// bresenhamHit reports whether blockIndex falls in the ratioPercent share
// of a {0,1,2,...} stream, using the same evenly-spread accumulator as a
// Bresenham line: hit(k) is true when floor((k+1)*ratio/100) exceeds
// floor(k*ratio/100), which happens exactly ratio times out of every 100
// consecutive indices and depends only on k and ratio, never on the
// history of prior calls.
func bresenhamHit(blockIndex, ratioPercent int) bool {
	if ratioPercent <= 0 {
		return false
	}
	if ratioPercent >= 100 {
		return true
	}
	before := (blockIndex * ratioPercent) / 100
	after := ((blockIndex + 1) * ratioPercent) / 100
	return after > before
}

// PolicyForLevel builds the mixing policy for a compression level in
// [0,100], mirroring fstcore's per-type compression dispatch: 0 stores
// raw, 1-50 linearly mixes LZ4 (at quality 2*level) in with raw blocks,
// 51-100 mixes in ZSTD-20 as the heavier algorithm over an LZ4-100
// baseline at an increasing ratio, per spec's "r% of blocks use the
// heavier algorithm" rule.
func PolicyForLevel(level int) Policy {
	switch {
	case level <= 0:
		return Single{Tag: TagUncompressed}
	case level <= 50:
		ratio := 2 * level
		return LinearMix{Compressed: TagLZ4, RatioPercent: ratio, Level: ratio}
	default:
		return CompositeMix{
			First: TagZSTD, FirstLevel: 20,
			Second: TagLZ4, SecondLevel: 100,
			RatioPercent: 2 * (level - 50),
		}
	}
}
