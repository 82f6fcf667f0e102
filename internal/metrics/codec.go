package metrics

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PointRecordSize is the byte size of one serialized point (3 x float64).
const PointRecordSize = 24

const (
	headerSize = 16
	floatSize  = 8

	// maxDecodeSamples bounds the allocation a corrupt header can cause.
	maxDecodeSamples = 1 << 26
)

var (
	// ErrRecordSize is returned by Decode for a header whose point record
	// size is not PointRecordSize.
	ErrRecordSize = errors.New("unsupported point record size")
	// ErrTooManySamples is returned by Decode for a header sample count
	// above the decode limit.
	ErrTooManySamples = errors.New("telemetry sample count too large")
)

// SerializationError reports the stream section whose write failed.
type SerializationError struct {
	Section string
	Err     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize telemetry %s: %v", e.Section, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// WriteTo writes the series to w in the fixed little-endian layout. Each
// section is written with a single Write call.
func (s *Series) WriteTo(w io.Writer) (int64, error) {
	n := s.Len()
	var total int64

	write := func(section string, buf []byte) error {
		written, err := w.Write(buf)
		total += int64(written)
		if err == nil && written != len(buf) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return &SerializationError{Section: section, Err: err}
		}
		return nil
	}

	header := make([]byte, 0, headerSize)
	header = binary.LittleEndian.AppendUint64(header, uint64(n))
	header = binary.LittleEndian.AppendUint64(header, PointRecordSize)
	if err := write("header", header); err != nil {
		return total, err
	}

	for _, pb := range s.pointBuffers() {
		buf := make([]byte, 0, n*PointRecordSize)
		for _, v := range (*pb.vecs)[:n] {
			buf = appendFloat(buf, v.X)
			buf = appendFloat(buf, v.Y)
			buf = appendFloat(buf, v.Z)
		}
		if err := write(pb.name, buf); err != nil {
			return total, err
		}
	}

	for _, sec := range []struct {
		name string
		vals []float64
	}{
		{"control_effort", s.ControlEffort},
		{"elapsed", s.Elapsed},
	} {
		buf := make([]byte, 0, n*floatSize)
		for _, v := range sec.vals[:n] {
			buf = appendFloat(buf, v)
		}
		if err := write(sec.name, buf); err != nil {
			return total, err
		}
	}
	return total, nil
}

func appendFloat(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
}

// Decode reads a telemetry stream written by Serialize.
func Decode(r io.Reader) (*Series, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, decodeErr("header", err)
	}
	count := binary.LittleEndian.Uint64(header[0:8])
	recordSize := binary.LittleEndian.Uint64(header[8:16])
	if recordSize != PointRecordSize {
		return nil, fmt.Errorf("decode telemetry header: %w: %d", ErrRecordSize, recordSize)
	}
	if count > maxDecodeSamples {
		return nil, fmt.Errorf("decode telemetry header: %w: %d", ErrTooManySamples, count)
	}
	n := int(count)

	s := &Series{}
	for _, pb := range s.pointBuffers() {
		buf := make([]byte, n*PointRecordSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, decodeErr(pb.name, err)
		}
		vecs := make([]r3.Vec, n)
		for i := range vecs {
			off := i * PointRecordSize
			vecs[i] = r3.Vec{
				X: readFloat(buf[off:]),
				Y: readFloat(buf[off+8:]),
				Z: readFloat(buf[off+16:]),
			}
		}
		*pb.vecs = vecs
	}

	for _, sec := range []struct {
		name string
		dst  *[]float64
	}{
		{"control_effort", &s.ControlEffort},
		{"elapsed", &s.Elapsed},
	} {
		buf := make([]byte, n*floatSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, decodeErr(sec.name, err)
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = readFloat(buf[i*floatSize:])
		}
		*sec.dst = vals
	}
	return s, nil
}

func readFloat(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func decodeErr(section string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("decode telemetry %s: %w", section, err)
}
