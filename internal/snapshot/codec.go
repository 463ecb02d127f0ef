package snapshot

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// magic prefixes every encoded snapshot; the byte after it says whether
// the payload is compressed.
var magic = []byte("OPGS")

const (
	flagPlain byte = 0
	flagZstd  byte = 1
)

// ErrNotSnapshot is returned when the input does not start with the
// snapshot header.
var ErrNotSnapshot = errors.New("not an encoded snapshot")

type encodeOptions struct {
	zstd bool
}

// EncodeOption tunes Encode.
type EncodeOption func(*encodeOptions)

// WithZstd compresses the payload.
func WithZstd() EncodeOption {
	return func(o *encodeOptions) { o.zstd = true }
}

// Encode writes s to w.
func Encode(w io.Writer, s *Snapshot, opts ...EncodeOption) (err error) {
	var o encodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	flag := flagPlain
	if o.zstd {
		flag = flagZstd
	}
	if _, err := w.Write(append(bytes.Clone(magic), flag)); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}

	if !o.zstd {
		return encodePayload(w, s)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	defer func() {
		err = errors.Join(err, zw.Close())
	}()
	return encodePayload(zw, s)
}

func encodePayload(w io.Writer, s *Snapshot) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Decode reads a snapshot written by Encode, compressed or not.
func Decode(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSnapshot, err)
	}
	if !bytes.Equal(header[:len(magic)], magic) {
		return nil, ErrNotSnapshot
	}

	var payload io.Reader = br
	switch header[len(magic)] {
	case flagPlain:
	case flagZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zr.Close()
		payload = zr
	default:
		return nil, fmt.Errorf("%w: unknown payload flag %d", ErrNotSnapshot, header[len(magic)])
	}

	dec := msgpack.NewDecoder(payload)
	dec.UseLooseInterfaceDecoding(true)
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return &s, nil
}
