package results

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"
)

// EncodeSamples packs samples as little-endian float64 and compresses them.
func EncodeSamples(samples []float64) []byte {
	raw := make([]byte, 8*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(s))
	}
	return snappy.Encode(nil, raw)
}

// DecodeSamples reverses EncodeSamples.
func DecodeSamples(data []byte) ([]float64, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("results: failed to decompress samples: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("results: sample blob has %d bytes, not a multiple of 8", len(raw))
	}
	samples := make([]float64, len(raw)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return samples, nil
}

// QueryHash fingerprints an engine and query pair so the same query can be
// followed across runs and benchsets.
func QueryHash(engine, query string) uint64 {
	h := murmur3.New64()
	h.Write([]byte(engine))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return h.Sum64()
}
