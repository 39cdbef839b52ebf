package ledger

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// EncodeAll and DecodeAll are safe for concurrent use, so one decoder serves
// every store.
var sharedDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

func decompress(data []byte) ([]byte, error) {
	dec, err := sharedDecoder()
	if err != nil {
		return nil, err
	}
	return dec.DecodeAll(data, nil)
}

type compressor struct {
	level zstd.EncoderLevel
	enc   func() (*zstd.Encoder, error)
}

func newCompressor(level int) *compressor {
	c := &compressor{level: zstd.EncoderLevelFromZstd(level)}
	c.enc = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	})
	return c
}

func (c *compressor) compress(data []byte) ([]byte, error) {
	enc, err := c.enc()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}
