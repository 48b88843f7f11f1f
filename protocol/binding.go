package protocol

import (
	"bufio"
	"fmt"
	"io"
)

// Binding moves commands and responses over a byte stream.
type Binding interface {
	Name() string
	WriteCommand(w io.Writer, cmd Command) error
	ReadCommand(r *bufio.Reader) (Command, error)
	WriteResponse(w io.Writer, resp Response) error
	ReadResponse(r *bufio.Reader) (Response, error)
}

// BindingByName returns "word" or "serial".
func BindingByName(name string) (Binding, error) {
	switch name {
	case "word", "":
		return WordBinding{}, nil
	case "serial", "nibble":
		return SerialBinding{}, nil
	}
	return nil, fmt.Errorf("unknown binding %q", name)
}

// WordBinding sends each command as two bytes, high byte first, and each
// response as one byte.
type WordBinding struct{}

func (WordBinding) Name() string { return "word" }

func (WordBinding) WriteCommand(w io.Writer, cmd Command) error {
	b := EncodeWord(cmd).Bytes()
	_, err := w.Write(b[:])
	return err
}

func (WordBinding) ReadCommand(r *bufio.Reader) (Command, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Command{}, fmt.Errorf("%w: got 1 of 2 bytes", ErrShortWord)
		}
		return Command{}, err
	}
	return DecodeWord(WordFromBytes(b[0], b[1]))
}

func (WordBinding) WriteResponse(w io.Writer, resp Response) error {
	_, err := w.Write([]byte{byte(resp)})
	return err
}

func (WordBinding) ReadResponse(r *bufio.Reader) (Response, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	resp := Response(b)
	return resp, resp.Validate()
}

// SerialBinding frames commands and responses as nibble transactions.
type SerialBinding struct{}

func (SerialBinding) Name() string { return "serial" }

func (SerialBinding) WriteCommand(w io.Writer, cmd Command) error {
	_, err := w.Write(AppendTransaction(nil, SerialNibbles(cmd)...))
	return err
}

func (SerialBinding) ReadCommand(r *bufio.Reader) (Command, error) {
	nibbles, err := ReadTransaction(r)
	if err != nil {
		return Command{}, err
	}
	return ParseSerialCommand(nibbles)
}

func (SerialBinding) WriteResponse(w io.Writer, resp Response) error {
	_, err := w.Write(AppendTransaction(nil, SerialResponseNibbles(resp)...))
	return err
}

func (SerialBinding) ReadResponse(r *bufio.Reader) (Response, error) {
	nibbles, err := ReadTransaction(r)
	if err != nil {
		return 0, err
	}
	return ParseSerialResponse(nibbles)
}
