package grbl

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// DefaultBaud is Grbl's factory serial rate.
const DefaultBaud = 115200

// OpenSerial opens a controller's serial port.
func OpenSerial(port string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", port, err)
	}
	return p, nil
}
