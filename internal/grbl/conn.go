// Package grbl streams programs to a Grbl controller using the
// send-response protocol: one line out, then wait for "ok" or "error:N".
package grbl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/gcode"
)

// ErrAlarm is returned when the controller enters an alarm state mid-program.
var ErrAlarm = errors.New("grbl alarm")

// CommandError is a line the controller rejected.
type CommandError struct {
	Line     int    // 1-based line in the source program
	Command  string // what was sent
	Response string // e.g. "error:20"
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Command, e.Response)
}

// Progress reports one acknowledged line.
type Progress struct {
	Sent    int    // lines acknowledged so far
	Line    int    // source line number
	Command string
}

// Conn represents a direct connection to a Grbl controller.
type Conn struct {
	rw   io.ReadWriter
	scan *bufio.Scanner
	log  *zap.Logger
}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{rw: rw, scan: bufio.NewScanner(rw), log: log}
}

// Close closes the underlying ReadWriter, if it implements io.Closer.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Send streams the program in r line by line. Comments and blank lines are
// not sent. It stops at the first rejected line, an alarm, or when ctx is
// done, and returns the number of lines acknowledged.
func (c *Conn) Send(ctx context.Context, r io.Reader, progress func(Progress)) (int, error) {
	src := bufio.NewScanner(r)
	sent, lineNo := 0, 0
	for src.Scan() {
		lineNo++
		cmd := gcode.StripComment(src.Text())
		if cmd == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if _, err := io.WriteString(c.rw, cmd+"\n"); err != nil {
			return sent, fmt.Errorf("line %d: write: %w", lineNo, err)
		}
		if err := c.await(lineNo, cmd); err != nil {
			return sent, err
		}
		sent++
		if progress != nil {
			progress(Progress{Sent: sent, Line: lineNo, Command: cmd})
		}
	}
	if err := src.Err(); err != nil {
		return sent, err
	}
	c.log.Debug("program streamed", zap.Int("lines", sent))
	return sent, nil
}

// await reads controller output until the current line is acknowledged.
// Status reports and the startup banner are logged and skipped.
func (c *Conn) await(lineNo int, cmd string) error {
	for c.scan.Scan() {
		resp := strings.TrimSpace(c.scan.Text())
		switch {
		case resp == "ok":
			return nil
		case strings.HasPrefix(resp, "error:"):
			return &CommandError{Line: lineNo, Command: cmd, Response: resp}
		case strings.HasPrefix(resp, "ALARM:"):
			return fmt.Errorf("line %d %q: %s: %w", lineNo, cmd, resp, ErrAlarm)
		case resp != "":
			c.log.Debug("controller message", zap.String("message", resp))
		}
	}
	if err := c.scan.Err(); err != nil {
		return fmt.Errorf("line %d: read: %w", lineNo, err)
	}
	return fmt.Errorf("line %d: controller closed the connection: %w", lineNo, io.ErrUnexpectedEOF)
}
