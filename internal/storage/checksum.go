package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ChecksumPrefix is the prefix for xxHash64 checksums.
const ChecksumPrefix = "xxh64:"

// Checksum represents a hex-encoded xxHash64 digest with the "xxh64:" prefix.
type Checksum string

var ErrInvalidChecksum = errors.New("storage: invalid checksum format")

// ComputeChecksum hashes a byte slice.
func ComputeChecksum(data []byte) Checksum {
	return FormatChecksum(xxhash.Sum64(data))
}

// ComputeReaderChecksum hashes everything read from r.
func ComputeReaderChecksum(r io.Reader) (Checksum, error) {
	d := xxhash.New()
	if _, err := io.Copy(d, r); err != nil {
		return "", fmt.Errorf("compute reader checksum: %w", err)
	}
	return FormatChecksum(d.Sum64()), nil
}

// ComputeFileChecksum opens a file and hashes its content.
func ComputeFileChecksum(path string) (Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	defer f.Close()
	return ComputeReaderChecksum(f)
}

// FormatChecksum formats a raw digest as a Checksum.
func FormatChecksum(sum uint64) Checksum {
	return Checksum(fmt.Sprintf("%s%016x", ChecksumPrefix, sum))
}

// ParseChecksum returns the raw digest held by c.
func ParseChecksum(c Checksum) (uint64, error) {
	s := string(c)
	if !strings.HasPrefix(s, ChecksumPrefix) {
		return 0, fmt.Errorf("%w: missing prefix %q", ErrInvalidChecksum, ChecksumPrefix)
	}
	hexStr := s[len(ChecksumPrefix):]
	if len(hexStr) != 16 {
		return 0, fmt.Errorf("%w: expected 16 hex chars, got %d", ErrInvalidChecksum, len(hexStr))
	}
	if _, err := hex.DecodeString(hexStr); err != nil {
		return 0, fmt.Errorf("%w: invalid hex: %v", ErrInvalidChecksum, err)
	}
	return strconv.ParseUint(hexStr, 16, 64)
}
