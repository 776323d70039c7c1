package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/ngageoint/six-library-sub017/blocking"
	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/format"
)

// State is the lifecycle stage of a decompression session.
type State uint8

const (
	Unopened State = iota
	Opened
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "Unopened"
	case Opened:
		return "Opened"
	case Closed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Session drives one Decompressor through Unopened, Opened and Closed.
// Blocks can be read only while Opened; a closed session cannot reopen.
type Session struct {
	id    format.CompressionType
	dec   Decompressor
	ctl   DecompressionControl
	state State
}

// NewSession creates an unopened session for the codec registered as id.
func NewSession(id format.CompressionType, dec Decompressor) *Session {
	return &Session{id: id, dec: dec}
}

// State returns the lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Open opens the image data at offset. See Decompressor for how info and
// mask may change.
func (s *Session) Open(r io.ReadSeeker, offset, length uint64, layout blocking.Layout,
	info *blocking.Info, mask *blocking.Mask,
) error {
	if s.state != Unopened {
		return fmt.Errorf("%w: %s session is %s", errs.ErrInvalidObject, s.id, s.state)
	}

	ctl, err := s.dec.Open(r, offset, length, layout, info, mask)
	if err != nil {
		return s.wrap(-1, err)
	}
	s.ctl = ctl
	s.state = Opened

	return nil
}

// ReadBlock returns unit n. It fails with errs.ErrSessionClosed unless the
// session is open.
func (s *Session) ReadBlock(n int) ([]byte, error) {
	if s.state != Opened {
		return nil, fmt.Errorf("%w: %s session is %s", errs.ErrSessionClosed, s.id, s.state)
	}

	b, err := s.ctl.ReadBlock(n)
	if err != nil {
		return nil, s.wrap(n, err)
	}

	return b, nil
}

// FreeBlock hands b back to the codec.
func (s *Session) FreeBlock(b []byte) {
	if s.state == Opened && b != nil {
		s.ctl.FreeBlock(b)
	}
}

// Close releases the codec state. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.state != Opened {
		s.state = Closed
		return nil
	}
	s.state = Closed

	if err := s.ctl.Close(); err != nil {
		return s.wrap(-1, err)
	}

	return nil
}

// wrap reports err as a decompression failure of this codec unless the
// codec already did.
func (s *Session) wrap(block int, err error) error {
	var ce *errs.CodecError
	if errors.As(err, &ce) {
		return err
	}

	return errs.NewDecompressionError(string(s.id), block, err)
}
