package importer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/piwi3910/MoldCut/internal/model"
)

// Magic is the 10-byte header that opens every .mld container.
var Magic = [10]byte{'M', 'O', 'L', 'D', 'E', '_', 'R', 'A', 'W', 0}

var (
	// ErrInvalidFormat is returned when the input is neither a container nor plain JSON.
	ErrInvalidFormat = errors.New("invalid pattern file format")
	// ErrTruncated is returned when a length-prefixed section runs past the end of input.
	ErrTruncated = errors.New("pattern file truncated")
)

// PieceSpec is one piece entry of a pattern payload, as written by the
// pattern editor. Pointer fields distinguish "absent" from zero values.
type PieceSpec struct {
	Name          string         `json:"name"`
	Qty           int            `json:"qty"`
	AreaMM2       float64        `json:"area_mm2"`
	Geom          model.Geometry `json:"geom"`
	CanRotate     *bool          `json:"canRotate"`
	FixedRotation bool           `json:"fixedRotation"`
	AutoOrient    bool           `json:"autoOrient"`
	GrainAxis     string         `json:"grainAxis"`
	Grain         string         `json:"grain"`
}

// Axis returns the declared grain axis, falling back to the legacy "grain"
// key. A piece declaring neither runs with the fabric length ("y").
func (p PieceSpec) Axis() string {
	switch {
	case p.GrainAxis != "":
		return p.GrainAxis
	case p.Grain != "":
		return p.Grain
	}
	return "y"
}

// maxQty bounds a decoded repeat count.
const maxQty = math.MaxInt32

// UnmarshalJSON accepts any JSON number for qty, rounding it to the nearest
// whole piece count.
func (p *PieceSpec) UnmarshalJSON(data []byte) error {
	type plain PieceSpec
	aux := struct {
		*plain
		Qty json.Number `json:"qty"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Qty == "" {
		return nil
	}
	f, err := aux.Qty.Float64()
	if err != nil {
		return fmt.Errorf("invalid qty %q: %w", aux.Qty, err)
	}
	p.Qty = int(math.Max(math.Min(math.Round(f), maxQty), -maxQty))
	return nil
}

// Rotatable returns the canRotate flag, defaulting to true when absent.
func (p PieceSpec) Rotatable() bool {
	return p.CanRotate == nil || *p.CanRotate
}

// PatternData is the subset of the JSON payload consumed by the importer.
type PatternData struct {
	Pieces []PieceSpec `json:"pieces"`
}

// Container is a decoded pattern file.
type Container struct {
	Version   uint32
	Thumbnail []byte
	Data      PatternData
	// Malformed is set when the payload could not be decoded and Data is empty.
	Malformed bool
	// Skipped lists the pieces of an otherwise valid payload that did not decode.
	Skipped []string
	// RawJSON is set when the input was plain JSON rather than a container.
	RawJSON bool
}

// ReadContainer decodes a .mld container from r.
func ReadContainer(r io.Reader) (Container, error) {
	var c Container

	var header [10]byte
	if _, err := io.ReadFull(r, header[:]); err != nil || header != Magic {
		return c, ErrInvalidFormat
	}

	if err := binary.Read(r, binary.LittleEndian, &c.Version); err != nil {
		return c, fmt.Errorf("reading version: %w", ErrTruncated)
	}

	thumb, err := readSection(r)
	if err != nil {
		return c, fmt.Errorf("reading thumbnail: %w", err)
	}
	c.Thumbnail = thumb

	payload, err := readSection(r)
	if err != nil {
		return c, fmt.Errorf("reading payload: %w", err)
	}

	if utf8.Valid(payload) {
		c.Data, c.Skipped, c.Malformed = decodePatternData(payload)
	} else {
		c.Malformed = true
	}
	return c, nil
}

// decodePatternData decodes a JSON payload one piece at a time. malformed is
// set only when the payload itself is not a JSON object with a piece list; a
// piece that fails to decode is left out and described in skipped.
func decodePatternData(payload []byte) (pd PatternData, skipped []string, malformed bool) {
	var raw struct {
		Pieces []json.RawMessage `json:"pieces"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return PatternData{}, nil, true
	}
	for i, msg := range raw.Pieces {
		var spec PieceSpec
		if err := json.Unmarshal(msg, &spec); err != nil {
			skipped = append(skipped, fmt.Sprintf("Piece %d skipped: %v", i+1, err))
			continue
		}
		pd.Pieces = append(pd.Pieces, spec)
	}
	return pd, skipped, false
}

// readSection reads a u32 length followed by that many bytes.
func readSection(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, ErrTruncated
	}
	// Untrusted length: grow the buffer as bytes arrive.
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r, int64(n))
	if err != nil || copied != int64(n) {
		return nil, ErrTruncated
	}
	return buf.Bytes(), nil
}

// DecodePattern decodes a pattern from raw bytes. The container format is
// tried first; when the magic header does not match, the same bytes are
// parsed as plain JSON before giving up with ErrInvalidFormat.
func DecodePattern(data []byte) (Container, error) {
	c, err := ReadContainer(bytes.NewReader(data))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrInvalidFormat) {
		return Container{}, err
	}

	pd, skipped, malformed := decodePatternData(data)
	if malformed {
		return Container{}, ErrInvalidFormat
	}
	return Container{Data: pd, Skipped: skipped, RawJSON: true}, nil
}

// WriteContainer encodes c in the .mld layout.
func WriteContainer(w io.Writer, c Container) error {
	payload, err := json.Marshal(c.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern data: %w", err)
	}
	return writeContainerPayload(w, c.Version, c.Thumbnail, payload)
}

func writeContainerPayload(w io.Writer, version uint32, thumb, payload []byte) error {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	_ = binary.Write(&buf, binary.LittleEndian, version)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(thumb)))
	buf.Write(thumb)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	_, err := w.Write(buf.Bytes())
	return err
}
