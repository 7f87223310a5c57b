package protocol

import (
	lerrors "github.com/vango-dev/loom/internal/errors"
)

// ErrorMessage is sent when the server rejects a client frame or the
// engine fails. Code is a loom error code ("E161").
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool // If true, the connection is closed after sending
}

// NewErrorMessage builds a message from err. Errors without a code are
// reported with an empty Code.
func NewErrorMessage(err error, fatal bool) *ErrorMessage {
	return &ErrorMessage{
		Code:    lerrors.CodeOf(err),
		Message: err.Error(),
		Fatal:   fatal,
	}
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadString()
	if err != nil {
		return nil, malformed(err, "error code")
	}
	message, err := d.ReadString()
	if err != nil {
		return nil, malformed(err, "error message")
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, malformed(err, "error fatal flag")
	}
	return &ErrorMessage{Code: code, Message: message, Fatal: fatal}, nil
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	msg := em.Message
	if em.Code != "" {
		msg = em.Code + ": " + msg
	}
	if em.Fatal {
		return "fatal: " + msg
	}
	return msg
}
