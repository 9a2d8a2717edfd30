package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// DefaultMaxLineBytes caps how large a single JSONL line may grow
// before decoding aborts.
const DefaultMaxLineBytes = 1 << 20

// ErrLineTooLong is returned when a JSONL line exceeds the configured
// maximum.
var ErrLineTooLong = errors.New("jsonl line exceeds max bytes")

// Decoder reads JSONL export records, one envelope per line. Blank
// lines terminate the stream.
type Decoder struct {
	r            *bufio.Reader
	maxLineBytes int
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), maxLineBytes: DefaultMaxLineBytes}
}

// SetMaxLineBytes overrides the per-line size cap. Non-positive values
// restore the default.
func (d *Decoder) SetMaxLineBytes(n int) {
	if n <= 0 {
		d.maxLineBytes = DefaultMaxLineBytes
		return
	}
	d.maxLineBytes = n
}

// Next returns the next record envelope, io.EOF at end of stream.
func (d *Decoder) Next() (Record, error) {
	line, err := readLineLimited(d.r, d.maxLineBytes)
	if err != nil {
		return Record{}, err
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return Record{}, io.EOF
	}

	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DecodeData unmarshals the envelope's payload into v.
func (r Record) DecodeData(v any) error {
	return json.Unmarshal(r.Data, v)
}

func readLineLimited(r *bufio.Reader, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLineBytes
	}

	var out []byte
	for {
		frag, err := r.ReadSlice('\n')
		out = append(out, frag...)
		if len(out) > maxBytes {
			return nil, ErrLineTooLong
		}
		if err == nil {
			return bytes.TrimSuffix(out, []byte("\n")), nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if len(out) == 0 {
				return nil, io.EOF
			}
			return out, nil
		}
		return nil, err
	}
}
