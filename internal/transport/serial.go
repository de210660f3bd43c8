package transport

import (
	stderrors "errors"
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/rileyhilliard/watchdog/internal/errors"
)

const (
	// readTimeout bounds each Read so ReadLines returns promptly when the
	// board is quiet.
	readTimeout = 10 * time.Millisecond
	// maxReadPerPoll keeps a chatty board from starving the caller.
	maxReadPerPoll = 64 * 1024
)

// serialPort is the subset of serial.Port we use.
type serialPort interface {
	Read(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// openPort opens a real device. Tests replace it.
var openPort = func(name string, mode *serial.Mode) (serialPort, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Serial reads lines from a serial device.
type Serial struct {
	name string
	port serialPort
	buf  LineBuffer
	read []byte
}

// OpenSerial opens name at baud with 8N1 framing.
func OpenSerial(name string, baud int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := openPort(name, mode)
	if err != nil {
		return nil, openError(name, err)
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		_ = p.Close()
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Failed to configure "+name,
			"The device may not support read timeouts")
	}
	return newSerial(name, p), nil
}

func newSerial(name string, p serialPort) *Serial {
	return &Serial{name: name, port: p, read: make([]byte, 1024)}
}

// Name returns the device path.
func (s *Serial) Name() string {
	return s.name
}

// ReadLines drains whatever bytes are waiting and returns the complete lines.
// A read that finds nothing returns after the short read timeout with no lines.
func (s *Serial) ReadLines() ([]string, error) {
	total := 0
	for total < maxReadPerPoll {
		n, err := s.port.Read(s.read)
		if n > 0 {
			_, _ = s.buf.Write(s.read[:n])
			total += n
		}
		if err != nil {
			return s.buf.Lines(), errors.WrapWithCode(err, errors.ErrTransport,
				"Serial read failed on "+s.name,
				"Check the cable; watchdog will reconnect automatically")
		}
		if n == 0 {
			break
		}
	}
	return s.buf.Lines(), nil
}

// Close releases the port.
func (s *Serial) Close() error {
	return s.port.Close()
}

func openError(name string, err error) error {
	suggestion := "Check the cable and the 'port' setting. 'watchdog ports' lists devices."
	var pe *serial.PortError
	if stderrors.As(err, &pe) {
		switch pe.Code() {
		case serial.PortBusy:
			suggestion = "Another program (an IDE serial monitor?) has the port open. Close it and retry."
		case serial.PermissionDenied:
			suggestion = "Add your user to the 'dialout' group (Linux) or 'uucp' group (Arch), then log in again."
		case serial.InvalidSpeed:
			suggestion = "baud_rate isn't supported by this device. The firmware usually uses 9600."
		}
	}
	return errors.WrapWithCode(err, errors.ErrTransport,
		fmt.Sprintf("Failed to open serial port %s", name),
		suggestion)
}

// PortInfo describes a serial device found on the system.
type PortInfo struct {
	Name    string
	IsUSB   bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// ListPorts enumerates serial devices, with USB details where available.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]PortInfo, 0, len(details))
		for _, d := range details {
			out = append(out, PortInfo{
				Name:    d.Name,
				IsUSB:   d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		return out, nil
	}

	// Detailed enumeration isn't available everywhere; fall back to names.
	names, listErr := serial.GetPortsList()
	if listErr != nil {
		return nil, errors.WrapWithCode(listErr, errors.ErrTransport,
			"Failed to list serial ports",
			"Check that you can read /dev (or the Windows registry)")
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n})
	}
	return out, nil
}
