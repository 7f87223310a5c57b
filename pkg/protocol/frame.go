package protocol

import (
	"errors"
	"io"

	lerrors "github.com/vango-dev/loom/internal/errors"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 5

	// MaxPayloadSize bounds a single frame payload (8MB). Reset frames
	// carry whole documents, so the limit is far above a mutation batch.
	MaxPayloadSize = 8 * 1024 * 1024
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameEvent     FrameType = 0x01 // Client → Server events
	FrameMutations FrameType = 0x02 // Server → Client host operations
	FrameReset     FrameType = 0x03 // Server → Client full snapshot
	FrameError     FrameType = 0x05 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameEvent:
		return "Event"
	case FrameMutations:
		return "Mutations"
	case FrameReset:
		return "Reset"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (ft FrameType) valid() bool {
	switch ft {
	case FrameEvent, FrameMutations, FrameReset, FrameError:
		return true
	}
	return false
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame represents a protocol frame with header and payload.
//
// Wire format (5 bytes header + variable payload):
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
//	│                                             │
//	│  Payload (variable length)                  │
//	│                                             │
//	└─────────────────────────────────────────────┘
type Frame struct {
	Type    FrameType
	Payload []byte
}

// NewFrame creates a new frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	length := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = byte(length >> 24)
	buf[2] = byte(length >> 16)
	buf[3] = byte(length >> 8)
	buf[4] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame decodes a frame from bytes. data must hold exactly one
// frame; trailing bytes are malformed.
func DecodeFrame(data []byte) (*Frame, error) {
	ft, length, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) != FrameHeaderSize+length {
		return nil, malformed(io.ErrUnexpectedEOF, "frame length %d, have %d bytes", length, len(data)-FrameHeaderSize)
	}
	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: ft, Payload: payload}, nil
}

// ReadFrame reads a complete frame from an io.Reader. A clean io.EOF
// before the header is returned as is.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, malformed(err, "short header")
	}
	ft, length, err := decodeHeader(header)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, malformed(err, "short payload")
	}
	return &Frame{Type: ft, Payload: payload}, nil
}

// WriteFrame writes a complete frame to an io.Writer.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

func decodeHeader(data []byte) (FrameType, int, error) {
	if len(data) < FrameHeaderSize {
		return 0, 0, malformed(io.ErrUnexpectedEOF, "short header")
	}
	ft := FrameType(data[0])
	if !ft.valid() {
		return 0, 0, malformed(ErrInvalidFrameType, "type 0x%02x", data[0])
	}
	length := int(data[1])<<24 | int(data[2])<<16 | int(data[3])<<8 | int(data[4])
	if length > MaxPayloadSize {
		return 0, 0, malformed(ErrFrameTooLarge, "length %d", length)
	}
	return ft, length, nil
}

// malformed wraps a decoding failure as E160.
func malformed(err error, format string, args ...any) error {
	return lerrors.New("E160").Wrap(err).WithDetailf(format, args...)
}
