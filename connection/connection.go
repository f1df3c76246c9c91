// Package connection adapts a raw net.Conn byte stream into frame-level
// read/write operations, buffering partial reads until a complete frame is
// available.
package connection

import (
	"io"
	"net"

	"github.com/pkg/errors"
	"github.com/segment-dev/segment/frame"
)

// initialBufferCapacity is the read buffer's starting size; it grows as
// needed to accommodate larger frames.
const initialBufferCapacity = 4096

// ErrConnectionResetByPeer is returned by ReadFrame when the peer closes
// the socket while unconsumed bytes remain buffered — an unclean
// termination, as opposed to a clean close with an empty buffer.
var ErrConnectionResetByPeer = errors.New("ERRPROTOCOL connection reset by peer")

// Connection wraps a net.Conn with a growable read buffer and frame-level
// read/write methods. A zero Connection is not usable; construct with New.
type Connection struct {
	conn net.Conn
	buf  []byte // bytes read from conn, not yet consumed by a parsed frame
}

// New wraps conn for frame-level I/O.
func New(conn net.Conn) *Connection {
	return &Connection{
		conn: conn,
		buf:  make([]byte, 0, initialBufferCapacity),
	}
}

// RemoteAddr returns the underlying connection's remote address.
func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close closes the underlying connection.
func (c *Connection) Close() error { return c.conn.Close() }

// ReadFrame returns the next frame from the connection, reading from the
// socket as needed.
//
//   - On a clean peer close with nothing left buffered, it returns
//     (nil, nil).
//   - On a peer close with unconsumed bytes buffered, it returns
//     ErrConnectionResetByPeer.
//   - On a malformed frame, the buffer is advanced past the malformed
//     prefix (so retrying cannot loop on the same garbage) and the parse
//     error is returned.
func (c *Connection) ReadFrame() (*frame.Frame, error) {
	for {
		f, consumed, err := tryParse(c.buf)
		switch err {
		case nil:
			c.buf = c.buf[consumed:]
			return &f, nil
		case frame.ErrIncompleteFrame:
			// fall through to read more bytes below
		default:
			c.buf = c.buf[consumed:]
			return nil, err
		}

		n, rerr := c.readMore()
		if n > 0 {
			continue
		}
		// n == 0: either a genuine I/O error, or the peer closed the
		// socket (io.EOF / a zero-byte read).
		if len(c.buf) == 0 {
			if rerr == io.EOF {
				return nil, nil
			}
			return nil, rerr
		}
		if rerr == io.EOF || rerr == nil {
			return nil, ErrConnectionResetByPeer
		}
		return nil, rerr
	}
}

// tryParse attempts to parse a single frame from buf, returning how many
// leading bytes were consumed so the caller can advance its buffer
// regardless of success or failure.
func tryParse(buf []byte) (frame.Frame, int, error) {
	c := frame.NewCursor(buf)
	f, err := frame.Parse(c)
	return f, c.Pos(), err
}

// readMore reads available bytes from the socket into the read buffer,
// growing it if necessary, and returns how many bytes were appended.
func (c *Connection) readMore() (int, error) {
	if len(c.buf) == cap(c.buf) {
		grown := make([]byte, len(c.buf), cap(c.buf)*2)
		copy(grown, c.buf)
		c.buf = grown
	}

	free := c.buf[len(c.buf):cap(c.buf)]
	n, err := c.conn.Read(free)
	c.buf = c.buf[:len(c.buf)+n]
	return n, err
}

// WriteFrame serializes f directly to the socket.
func (c *Connection) WriteFrame(f frame.Frame) error {
	_, err := f.WriteTo(c.conn)
	return errors.Wrap(err, "connection: write frame")
}

// WriteString writes a String frame without allocating an Array.
func (c *Connection) WriteString(s string) error {
	return c.WriteFrame(frame.String(s))
}

// WriteBlob writes a Blob frame without allocating an Array.
func (c *Connection) WriteBlob(b []byte) error {
	return c.WriteFrame(frame.Blob(b))
}

// WriteInteger writes an Integer frame without allocating an Array.
func (c *Connection) WriteInteger(i int64) error {
	return c.WriteFrame(frame.Integer(i))
}

// WriteError writes an Error frame without allocating an Array.
func (c *Connection) WriteError(msg string) error {
	return c.WriteFrame(frame.Error(msg))
}

// WriteNull writes the Null frame without allocating an Array.
func (c *Connection) WriteNull() error {
	return c.WriteFrame(frame.Null())
}
