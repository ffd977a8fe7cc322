package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSyntax(t *testing.T) {
	assert.NoError(t, CheckSyntax(""))
	assert.NoError(t, CheckSyntax("; header only\n(setup)\n"))
	assert.NoError(t, CheckSyntax("G90\nG0 X1.5 Y-2\nG1 Z-0.8 F347 ; plunge\n"))
}

func TestCheckSyntaxGeneratedProgram(t *testing.T) {
	plan := newTestPlan(t, 2, nil)
	assert.NoError(t, CheckSyntax(New("Grbl").Generate(plan)))
}
