package store

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nvandessel/neuropulse/internal/models"
)

// JSONLVersion is the current export format version.
const JSONLVersion = 1

// MaxPayloadSize bounds how much a compressed export may expand to (1GB).
const MaxPayloadSize = 1 << 30

// ErrChecksumMismatch is returned when an export's payload does not match
// the checksum in its header.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Header is the first line of a JSONL export.
type Header struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	RunID      string    `json:"run_id,omitempty"`
	Seed       uint64    `json:"seed"`
	Count      int       `json:"count"`
	Checksum   string    `json:"checksum"`
	Compressed bool      `json:"compressed"`
}

// EncodePayload renders records as newline-terminated JSON lines.
func EncodePayload(records []models.SessionRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return nil, fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Checksum returns "sha256:<hex>" of data.
func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// WriteJSONL writes a header line followed by the payload. Version, Count
// and Checksum are filled in from records; the checksum covers the payload
// bytes exactly as written (after gzip when h.Compressed is set).
func WriteJSONL(w io.Writer, h Header, records []models.SessionRecord) (Header, error) {
	payload, err := EncodePayload(records)
	if err != nil {
		return Header{}, err
	}

	if h.Compressed {
		var compressed bytes.Buffer
		gzw, err := gzip.NewWriterLevel(&compressed, gzip.DefaultCompression)
		if err != nil {
			return Header{}, fmt.Errorf("creating gzip writer: %w", err)
		}
		if _, err := gzw.Write(payload); err != nil {
			return Header{}, fmt.Errorf("compressing payload: %w", err)
		}
		if err := gzw.Close(); err != nil {
			return Header{}, fmt.Errorf("closing gzip writer: %w", err)
		}
		payload = compressed.Bytes()
	}

	h.Version = JSONLVersion
	h.Count = len(records)
	h.Checksum = Checksum(payload)
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	headerBytes, err := json.Marshal(h)
	if err != nil {
		return Header{}, fmt.Errorf("marshaling header: %w", err)
	}
	if _, err := w.Write(append(headerBytes, '\n')); err != nil {
		return Header{}, fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return Header{}, fmt.Errorf("writing payload: %w", err)
	}
	return h, nil
}

// ReadJSONLHeader reads only the header line.
func ReadJSONLHeader(r io.Reader) (Header, error) {
	h, _, err := readHeader(bufio.NewReader(r))
	return h, err
}

func readHeader(reader *bufio.Reader) (Header, *bufio.Reader, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return Header{}, nil, fmt.Errorf("reading header line: %w", err)
	}
	var h Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &h); err != nil {
		return Header{}, nil, fmt.Errorf("parsing header: %w", err)
	}
	if h.Version != JSONLVersion {
		return Header{}, nil, fmt.Errorf("unsupported export version %d", h.Version)
	}
	return h, reader, nil
}

// ReadJSONL reads an export, verifies its checksum and record count, and
// decodes the records.
func ReadJSONL(r io.Reader) (Header, []models.SessionRecord, error) {
	h, reader, err := readHeader(bufio.NewReader(r))
	if err != nil {
		return Header{}, nil, err
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return Header{}, nil, fmt.Errorf("reading payload: %w", err)
	}
	if got := Checksum(payload); got != h.Checksum {
		return Header{}, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, h.Checksum, got)
	}

	if h.Compressed {
		gzr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return Header{}, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzr.Close()

		payload, err = io.ReadAll(io.LimitReader(gzr, MaxPayloadSize+1))
		if err != nil {
			return Header{}, nil, fmt.Errorf("decompressing payload: %w", err)
		}
		if len(payload) > MaxPayloadSize {
			return Header{}, nil, fmt.Errorf("decompressed payload exceeds maximum size of %d bytes", MaxPayloadSize)
		}
	}

	records := make([]models.SessionRecord, 0, min(max(h.Count, 0), 1<<16))
	dec := json.NewDecoder(bytes.NewReader(payload))
	for {
		var rec models.SessionRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Header{}, nil, fmt.Errorf("decoding record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if len(records) != h.Count {
		return Header{}, nil, fmt.Errorf("header declares %d records, payload has %d", h.Count, len(records))
	}
	return h, records, nil
}
