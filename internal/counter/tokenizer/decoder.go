package tokenizer

import (
	"errors"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a sequence of raw byte chunks into UTF-8 text. A multi-byte
// sequence cut by a chunk boundary is held back and completed with the next
// chunk. Ill-formed bytes decode to U+FFFD, which is a delimiter.
//
// A Decoder is not safe for concurrent use; one belongs to one read loop.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	scratch []byte
}

func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Append decodes chunk, prefixed by any bytes held from the previous call,
// and appends the text to dst. The decoder writes straight into the spare
// capacity of dst, so a caller reusing one buffer pays for no other copy.
// When final is true nothing is held back: an incomplete trailing sequence
// becomes U+FFFD.
func (d *Decoder) Append(dst, chunk []byte, final bool) []byte {
	src := chunk
	if len(d.pending) > 0 {
		d.scratch = append(append(d.scratch[:0], d.pending...), chunk...)
		src = d.scratch
		d.pending = d.pending[:0]
	}

	for {
		// Each ill-formed byte expands to the three bytes of U+FFFD.
		dst = slices.Grow(dst, 3*len(src)+utf8.UTFMax)
		nDst, nSrc, err := d.t.Transform(dst[len(dst):cap(dst)], src, final)
		dst = dst[:len(dst)+nDst]
		src = src[nSrc:]
		if !errors.Is(err, transform.ErrShortDst) {
			break
		}
	}
	d.pending = append(d.pending, src...)
	if final {
		d.t.Reset()
	}
	return dst
}

// Pending returns the number of bytes held for the next call.
func (d *Decoder) Pending() int {
	return len(d.pending)
}
