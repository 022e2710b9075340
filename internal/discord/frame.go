package discord

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ///////////////////////////////////////////////
// Opcodes
// ///////////////////////////////////////////////

// Opcode is the first header word of an IPC frame.
type Opcode uint32

const (
	OpHandshake Opcode = iota
	OpFrame
	OpClose
	// OpPing is a keepalive sent by Discord.
	OpPing
	// OpPong answers OpPing with the same payload.
	OpPong
)

var opcodeNames = [...]string{"HANDSHAKE", "FRAME", "CLOSE", "PING", "PONG"}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint32(o))
}

// MaxPayloadSize caps a frame payload in either direction.
const MaxPayloadSize = 1 << 20

// ErrPayloadTooLarge is returned for a payload over MaxPayloadSize.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrIPCNotAvailable is returned when no Discord IPC endpoint answers.
var ErrIPCNotAvailable = errors.New("discord IPC not available")

// ///////////////////////////////////////////////
// Header
// ///////////////////////////////////////////////

// frameHeaderSize is the opcode word plus the length word, both little-endian.
const frameHeaderSize = 8

type header struct {
	op     Opcode
	length uint32
}

func (h header) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.op))
	binary.LittleEndian.PutUint32(b[4:8], h.length)
}

func parseHeader(b []byte) header {
	return header{
		op:     Opcode(binary.LittleEndian.Uint32(b[0:4])),
		length: binary.LittleEndian.Uint32(b[4:8]),
	}
}

func checkSize(n uint64) error {
	if n > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, n, MaxPayloadSize)
	}
	return nil
}

// ///////////////////////////////////////////////
// Codec
// ///////////////////////////////////////////////

// EncodeFrame returns the header followed by payload.
func EncodeFrame(op Opcode, payload []byte) ([]byte, error) {
	if err := checkSize(uint64(len(payload))); err != nil {
		return nil, err
	}
	frame := make([]byte, frameHeaderSize, frameHeaderSize+len(payload))
	header{op: op, length: uint32(len(payload))}.put(frame)
	return append(frame, payload...), nil
}

// DecodeFrame reads exactly one frame from r.
func DecodeFrame(r io.Reader) (Opcode, []byte, error) {
	var buf [frameHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, nil, fmt.Errorf("reading frame header: %w", err)
	}
	h := parseHeader(buf[:])
	if err := checkSize(uint64(h.length)); err != nil {
		return 0, nil, err
	}
	payload := make([]byte, h.length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("reading %s payload: %w", h.op, err)
	}
	return h.op, payload, nil
}
