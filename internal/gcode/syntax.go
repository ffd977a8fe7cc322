package gcode

import (
	"fmt"
	"strings"

	gocnc "github.com/joushou/gocnc/gcode"
)

// CheckSyntax runs the program through gocnc's G-code parser. Comments
// are stripped first since controllers disagree on their syntax.
func CheckSyntax(code string) error {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		if line = StripComment(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if _, err := gocnc.Parse(strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("invalid G-code: %w", err)
	}
	return nil
}
