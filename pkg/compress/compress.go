// Package compress provides zstd compression for stored report payloads.
//
// The history store keeps every run's full report JSON; zstd keeps those
// blobs small while staying fast enough to be invisible on the hot path.
package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Level represents compression level.
type Level int

const (
	// LevelFastest prioritizes speed over ratio.
	LevelFastest Level = 1

	// LevelDefault is a good balance for JSON payloads.
	LevelDefault Level = 3

	// LevelBest provides maximum compression (slowest).
	LevelBest Level = 9
)

// Compressor compresses and decompresses byte payloads. Safe for
// concurrent use; encoders and decoders are pooled.
type Compressor struct {
	level Level

	encoderPool sync.Pool
	decoderPool sync.Pool
}

// New creates a Compressor with the given level.
func New(level Level) *Compressor {
	c := &Compressor{level: level}
	c.encoderPool = sync.Pool{
		New: func() any {
			enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(int(level))))
			return enc
		},
	}
	c.decoderPool = sync.Pool{
		New: func() any {
			dec, _ := zstd.NewReader(nil)
			return dec
		},
	}
	return c
}

// Compress returns the zstd-compressed form of data.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	enc, ok := c.encoderPool.Get().(*zstd.Encoder)
	if !ok || enc == nil {
		return nil, fmt.Errorf("compress: encoder unavailable")
	}
	defer c.encoderPool.Put(enc)
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	dec, ok := c.decoderPool.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, fmt.Errorf("compress: decoder unavailable")
	}
	defer c.decoderPool.Put(dec)
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("compress: decompress: %w", err)
	}
	return out, nil
}
