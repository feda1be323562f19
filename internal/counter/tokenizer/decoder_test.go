package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func decode(d *Decoder, chunk []byte, final bool) string {
	return string(d.Append(nil, chunk, final))
}

func TestDecoderHoldsSplitSequence(t *testing.T) {
	input := []byte("café €") // é is 2 bytes, € is 3 bytes
	d := NewDecoder()

	// Cut inside é.
	assert.Equal(t, "caf", decode(d, input[:4], false))
	assert.Equal(t, 1, d.Pending())

	// Cut inside €.
	assert.Equal(t, "é ", decode(d, input[4:7], false))
	assert.Equal(t, 1, d.Pending())

	assert.Equal(t, "€", decode(d, input[7:], true))
	assert.Zero(t, d.Pending())
}

func TestDecoderInvalidBytes(t *testing.T) {
	out := decode(NewDecoder(), []byte{'o', 'k', 0xff, 'g', 'o'}, false)
	assert.Equal(t, "ok�go", out)
	assert.Equal(t, []string{"ok", "go"}, Fields(out))
}

func TestDecoderFinalFlushesIncomplete(t *testing.T) {
	d := NewDecoder()
	assert.Equal(t, "ab", decode(d, []byte{'a', 'b', 0xe2, 0x82}, false))
	assert.Equal(t, 2, d.Pending())
	out := decode(d, nil, true)
	assert.NotEmpty(t, out)
	assert.Empty(t, Fields(out), "flushed bytes decode to replacement characters")
	assert.Zero(t, d.Pending())
}

func TestDecoderAppendKeepsPrefix(t *testing.T) {
	d := NewDecoder()
	dst := make([]byte, 0, 4)
	dst = append(dst, "over"...)
	dst = d.Append(dst, []byte("flow \xe2\x82"), false)
	assert.Equal(t, "overflow ", string(dst))
	dst = d.Append(dst, []byte("\xac"), true)
	assert.Equal(t, "overflow €", string(dst))
}

func TestDecoderInvalidRunGrowsDestination(t *testing.T) {
	// Every byte becomes a three-byte replacement character.
	raw := make([]byte, 4096)
	for i := range raw {
		raw[i] = 0xff
	}
	out := NewDecoder().Append(nil, raw, true)
	assert.Len(t, out, 3*len(raw))
	assert.Empty(t, Fields(string(out)))
}

func TestDecoderChunkingIsTransparent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringOfN(rapid.SampledFrom([]rune("aé€😀 _.")), 0, 40, -1).Draw(rt, "text")
		size := rapid.IntRange(1, 7).Draw(rt, "chunk")
		raw := []byte(text)

		d := NewDecoder()
		var out []byte
		for start := 0; start < len(raw); start += size {
			end := min(start+size, len(raw))
			out = d.Append(out, raw[start:end], false)
		}
		out = d.Append(out, nil, true)

		assert.Equal(rt, text, string(out))
	})
}
