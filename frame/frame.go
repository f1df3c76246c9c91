// Package frame implements segment's wire protocol: a small, self-delimiting
// binary format with six frame types, used symmetrically for requests and
// responses.
//
// Every frame begins with a 1-byte type tag and ends with a CRLF ("\r\n")
// line terminator; blob frames add a second CRLF after their payload.
//
//	$<text>\r\n             String
//	%<decimal>\r\n           Integer
//	!<text>\r\n              Error
//	*<length>\r\n<bytes>\r\n Blob (length -1 is the Null sentinel)
//	#<length>\r\n<frame>...  Array (one level deep; arrays cannot nest)
package frame

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Type identifies which of the six wire cases a Frame holds.
type Type byte

const (
	// TypeString is a UTF-8, line-delimited frame ('$').
	TypeString Type = '$'
	// TypeBlob is an opaque, length-prefixed byte sequence ('*').
	TypeBlob Type = '*'
	// TypeInteger is a signed 64-bit integer ('%').
	TypeInteger Type = '%'
	// TypeNull is the singular null value, encoded on the wire as a Blob
	// with length -1.
	TypeNull Type = 0
	// TypeArray is a one-level-deep sequence of frames ('#').
	TypeArray Type = '#'
	// TypeError is a UTF-8, line-delimited error message ('!').
	TypeError Type = '!'
)

// Frame is a tagged variant with six cases: String, Blob, Integer, Null,
// Array and Error. Only the fields relevant to Type are meaningful.
type Frame struct {
	Type Type

	Str   string  // valid for TypeString, TypeError
	Blob  []byte  // valid for TypeBlob
	Int   int64   // valid for TypeInteger
	Array []Frame // valid for TypeArray
}

// String builds a String frame.
func String(s string) Frame { return Frame{Type: TypeString, Str: s} }

// Blob builds a Blob frame from an opaque byte payload.
func Blob(b []byte) Frame { return Frame{Type: TypeBlob, Blob: b} }

// Integer builds an Integer frame.
func Integer(i int64) Frame { return Frame{Type: TypeInteger, Int: i} }

// Null builds the singular Null value.
func Null() Frame { return Frame{Type: TypeNull} }

// Array builds an Array frame. Per the wire grammar, arrays are exactly
// one level deep; the caller must not include an Array among values.
func Array(values []Frame) Frame { return Frame{Type: TypeArray, Array: values} }

// Error builds an Error frame.
func Error(msg string) Frame { return Frame{Type: TypeError, Str: msg} }

// IsNull reports whether f is the Null frame.
func (f Frame) IsNull() bool { return f.Type == TypeNull }

// String renders a frame for the interactive client, per the Display rules:
// arrays render as indexed lines; blobs as "(blob) <utf8>" or
// "(error) <reason>" on decode failure; integers as "(integer) N"; nulls as
// "(null)"; strings as "(string) S"; errors as "(error) M".
func (f Frame) String() string {
	switch f.Type {
	case TypeArray:
		var b strings.Builder
		for i, v := range f.Array {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d) %s", i, v.String())
		}
		return b.String()
	case TypeBlob:
		if !utf8.Valid(f.Blob) {
			return fmt.Sprintf("(error) invalid utf-8 in blob")
		}
		return fmt.Sprintf("(blob) %s", string(f.Blob))
	case TypeError:
		return fmt.Sprintf("(error) %s", f.Str)
	case TypeInteger:
		return fmt.Sprintf("(integer) %d", f.Int)
	case TypeNull:
		return "(null)"
	case TypeString:
		return fmt.Sprintf("(string) %s", f.Str)
	default:
		return "(unknown)"
	}
}

// WriteTo serializes f to w per the wire grammar, symmetric to Parse.
// It implements io.WriterTo.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := f.writeOne(w)
	total += int64(n)
	return total, err
}

func (f Frame) writeOne(w io.Writer) (int, error) {
	switch f.Type {
	case TypeString:
		return writeAll(w, []byte("$"+f.Str+"\r\n"))
	case TypeInteger:
		return writeAll(w, []byte("%"+strconv.FormatInt(f.Int, 10)+"\r\n"))
	case TypeError:
		return writeAll(w, []byte("!"+f.Str+"\r\n"))
	case TypeNull:
		return writeAll(w, []byte("*-1\r\n\r\n"))
	case TypeBlob:
		n1, err := writeAll(w, []byte("*"+strconv.Itoa(len(f.Blob))+"\r\n"))
		if err != nil {
			return n1, err
		}
		n2, err := writeAll(w, f.Blob)
		n1 += n2
		if err != nil {
			return n1, err
		}
		n3, err := writeAll(w, []byte("\r\n"))
		return n1 + n3, err
	case TypeArray:
		n1, err := writeAll(w, []byte("#"+strconv.Itoa(len(f.Array))+"\r\n"))
		if err != nil {
			return n1, err
		}
		for _, child := range f.Array {
			cn, err := child.writeOne(w)
			n1 += cn
			if err != nil {
				return n1, err
			}
		}
		return n1, nil
	default:
		return 0, fmt.Errorf("frame: unknown frame type %#v", f.Type)
	}
}

func writeAll(w io.Writer, b []byte) (int, error) {
	return w.Write(b)
}
