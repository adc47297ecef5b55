// Package checksum computes sha256 digests of byte streams in a single pass,
// optionally forwarding every chunk to a sink as it is read.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// ChunkSize is the fixed read size. Memory use of Sum is bounded by it
// regardless of the stream length.
const ChunkSize = 64 * 1024

// Digest is a sha256 digest.
type Digest [sha256.Size]byte

// String returns the lower-case hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is all zeros.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("checksum: invalid hex digest %q: %w", s, err)
	}
	if len(raw) != sha256.Size {
		return d, fmt.Errorf("checksum: digest %q has %d bytes, want %d", s, len(raw), sha256.Size)
	}
	copy(d[:], raw)
	return d, nil
}

// MustParseDigest is ParseDigest for compile-time literals. It panics on error.
func MustParseDigest(s string) Digest {
	d, err := ParseDigest(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum reads r to EOF, hashing every chunk and writing it to w before the next
// read. w may be nil. It returns the digest and the number of bytes read.
func Sum(r io.Reader, w io.Writer) (Digest, int64, error) {
	if w == nil {
		return SumFunc(r, nil)
	}
	return SumFunc(r, func(chunk []byte) error {
		_, err := w.Write(chunk)
		return err
	})
}

// SumFunc is Sum with a callback sink. The chunk passed to sink is only valid
// for the duration of the call.
func SumFunc(r io.Reader, sink func([]byte) error) (Digest, int64, error) {
	var (
		total int64
		buf   = make([]byte, ChunkSize)
		hash  = sha256.New()
	)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			total += int64(n)
			hash.Write(chunk)

			if sink != nil {
				if werr := sink(chunk); werr != nil {
					return Digest{}, 0, bencherrors.NewIOError(bencherrors.CodeWriteFailed, "writing dataset contents", werr)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// Readers that already classify their failures (network, decoding)
			// keep their own category.
			var be *bencherrors.BenchError
			if errors.As(err, &be) {
				return Digest{}, 0, err
			}
			return Digest{}, 0, bencherrors.NewIOError(bencherrors.CodeReadFailed, "reading dataset contents", err)
		}
	}

	var d Digest
	copy(d[:], hash.Sum(nil))
	return d, total, nil
}
