package protocol

import (
	"errors"
	"io"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the maximum payload size (2^16 - 1 bytes).
	MaxPayloadSize = 65535
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameEvent   FrameType = 0x01 // Client → Server mutation events
	FramePatches FrameType = 0x02 // Server → Client address patches
	FrameControl FrameType = 0x03 // Ping/pong
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	default:
		return "Unknown"
	}
}

// Control message bytes carried in a FrameControl payload.
const (
	ControlPing byte = 0x01
	ControlPong byte = 0x02
)

// Frame errors.
var ErrFrameTooLarge = errors.New("protocol: frame payload too large")

// Frame is the envelope every message travels in.
//
// Wire format: 1 byte type, 1 reserved byte, 2 bytes big-endian payload
// length, then the payload.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	length := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = 0 // reserved
	buf[2] = byte(length >> 8)
	buf[3] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame decodes a frame from bytes. The input must contain the
// full header and payload.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}

	ft := FrameType(data[0])
	length := int(data[2])<<8 | int(data[3])
	if len(data) < FrameHeaderSize+length {
		return nil, io.ErrUnexpectedEOF
	}

	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+length])

	return &Frame{Type: ft, Payload: payload}, nil
}

// NewFrame creates a frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}
