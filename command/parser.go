package command

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/segment-dev/segment/frame"
)

// Parser walks the child frames of a top-level Array frame, one argument
// at a time.
type Parser struct {
	values []frame.Frame
	pos    int
}

// NewParser requires f to be an Array frame and returns a Parser over its
// children.
func NewParser(f frame.Frame) (*Parser, error) {
	if f.Type != frame.TypeArray {
		return nil, errors.New("ERRPARSE failed to parse frame as array")
	}
	return &Parser{values: f.Array}, nil
}

func (p *Parser) next() (frame.Frame, bool) {
	if p.pos >= len(p.values) {
		return frame.Frame{}, false
	}
	v := p.values[p.pos]
	p.pos++
	return v, true
}

// Consumed reports whether every argument has been read.
func (p *Parser) Consumed() bool { return p.pos >= len(p.values) }

// NextString reads the next argument as a string. String frames pass
// through; Blob frames are decoded as UTF-8 (invalid UTF-8 is an
// ERRPARSE). ok is false if there are no more arguments.
func (p *Parser) NextString() (s string, ok bool, err error) {
	f, present := p.next()
	if !present {
		return "", false, nil
	}
	switch f.Type {
	case frame.TypeString:
		return f.Str, true, nil
	case frame.TypeBlob:
		if !utf8.Valid(f.Blob) {
			return "", false, errors.New("ERRPARSE invalid utf-8 in argument")
		}
		return string(f.Blob), true, nil
	default:
		return "", false, errors.New("ERRPARSE failed to parse frame as string")
	}
}

// NextBlob reads the next argument as an opaque byte payload. String
// frames are converted to their UTF-8 bytes; Blob frames pass through.
// ok is false if there are no more arguments.
func (p *Parser) NextBlob() (b []byte, ok bool, err error) {
	f, present := p.next()
	if !present {
		return nil, false, nil
	}
	switch f.Type {
	case frame.TypeString:
		return []byte(f.Str), true, nil
	case frame.TypeBlob:
		return f.Blob, true, nil
	default:
		return nil, false, errors.New("ERRPARSE failed to parse frame as blob")
	}
}
