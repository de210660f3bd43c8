package transport

import (
	"io"
	"os"
	"sync"

	"github.com/rileyhilliard/watchdog/internal/errors"
)

// Replay feeds recorded lines through the same polling path as a live port.
// A background goroutine reads the input so ReadLines never blocks, even on
// stdin. Each ReadLines call releases at most perPoll lines.
type Replay struct {
	name    string
	closer  io.Closer
	lines   chan string
	errc    chan error
	done    chan struct{}
	perPoll int
	buf     LineBuffer

	closeOnce sync.Once
	finished  bool
}

// OpenReplay opens path for replay. "-" reads stdin.
func OpenReplay(path string, perPoll int) (*Replay, error) {
	if path == "-" {
		return NewReplay("stdin", io.NopCloser(os.Stdin), perPoll), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Failed to open replay file "+path,
			"Check the path, or use '-' to read from stdin")
	}
	return NewReplay(path, f, perPoll), nil
}

// NewReplay replays lines read from r. name is used in messages only.
func NewReplay(name string, r io.ReadCloser, perPoll int) *Replay {
	if perPoll <= 0 {
		perPoll = 1
	}
	rp := &Replay{
		name:    name,
		closer:  r,
		lines:   make(chan string, 64),
		errc:    make(chan error, 1),
		done:    make(chan struct{}),
		perPoll: perPoll,
	}
	go rp.pump(r)
	return rp
}

func (rp *Replay) pump(r io.Reader) {
	defer close(rp.lines)
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			_, _ = rp.buf.Write(chunk[:n])
			for _, line := range rp.buf.Lines() {
				select {
				case rp.lines <- line:
				case <-rp.done:
					return
				}
			}
		}
		if err == io.EOF {
			// A final line without a newline still counts.
			_, _ = rp.buf.Write([]byte{'\n'})
			for _, line := range rp.buf.Lines() {
				select {
				case rp.lines <- line:
				case <-rp.done:
					return
				}
			}
			return
		}
		if err != nil {
			select {
			case rp.errc <- err:
			default:
			}
			return
		}
	}
}

// Name returns the input's name.
func (rp *Replay) Name() string {
	return rp.name
}

// ReadLines returns up to perPoll buffered lines. Once the input is fully
// consumed it returns ErrExhausted; a read failure is a TRANSPORT error.
func (rp *Replay) ReadLines() ([]string, error) {
	if rp.finished {
		return nil, ErrExhausted
	}

	var out []string
	for len(out) < rp.perPoll {
		select {
		case line, ok := <-rp.lines:
			if !ok {
				rp.finished = true
				if err := rp.pumpErr(); err != nil {
					return out, err
				}
				if len(out) > 0 {
					return out, nil
				}
				return nil, ErrExhausted
			}
			out = append(out, line)
		default:
			return out, nil
		}
	}
	return out, nil
}

func (rp *Replay) pumpErr() error {
	select {
	case err := <-rp.errc:
		return errors.WrapWithCode(err, errors.ErrTransport,
			"Failed reading replay input "+rp.name, "")
	default:
		return nil
	}
}

// Close stops the reader goroutine and closes the input.
func (rp *Replay) Close() error {
	var err error
	rp.closeOnce.Do(func() {
		close(rp.done)
		err = rp.closer.Close()
	})
	return err
}
