package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/gcode"
	"github.com/piwi3910/MillPath/internal/grbl"
)

func (a *App) cmdSend(args []string) error {
	fs := a.newFlagSet("send")
	port := fs.String("port", a.Config.Serial.Port, "Controller serial port.")
	baud := fs.Int("baud", a.Config.Serial.Baud, "Serial baud rate.")
	check := fs.Bool("check", true, "Check the program's syntax before sending.")
	verbose := fs.Bool("v", false, "Print every acknowledged line.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("send needs one G-code file")
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if *check {
		if err := gcode.CheckSyntax(string(data)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	rwc, err := a.Dial(*port, *baud)
	if err != nil {
		return err
	}
	conn := grbl.NewConn(rwc, a.Log)
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.Log.Info("sending program", zap.String("path", path), zap.String("port", *port), zap.Int("baud", *baud))
	n, err := conn.Send(ctx, bytes.NewReader(data), func(p grbl.Progress) {
		if *verbose {
			fmt.Fprintf(a.Stdout, "%5d  %s\n", p.Line, p.Command)
		}
	})
	if err != nil {
		return fmt.Errorf("send stopped after %d lines: %w", n, err)
	}
	fmt.Fprintf(a.Stdout, "Sent %d lines to %s.\n", n, *port)
	return nil
}
