package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

var addToolLines = []string{"1", "T1", "40", "4", "yes", "1", "80"}

func TestMenuAddToolAcceptsSuggestion(t *testing.T) {
	ta := newTestApp(t, script(append(addToolLines, "5")...))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))

	out := ta.out.String()
	assert.Contains(t, out, "--- CNC G-Code Generator ---")
	assert.Contains(t, out, "Suggested Spindle Speed: 955 RPM")
	assert.Contains(t, out, "Are you happy with these values? (yes/no): ")
	assert.Contains(t, out, "Tool added successfully!")
	assert.Contains(t, out, "Exiting program.")

	cat, err := ta.Store.Load()
	require.NoError(t, err)
	require.Len(t, cat.Tools, 1)
	assert.Equal(t, 955, cat.Tools[0].SpindleSpeed)
}

func TestMenuAddToolCustomValues(t *testing.T) {
	ta := newTestApp(t, script("1", "T1", "40", "4", "no", "1000", "500", "1", "80", "5"))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))

	cat, err := ta.Store.Load()
	require.NoError(t, err)
	require.Len(t, cat.Tools, 1)
	assert.Equal(t, 1000, cat.Tools[0].SpindleSpeed)
	assert.Equal(t, 500, cat.Tools[0].FeedRate)
}

func TestMenuDuplicateTool(t *testing.T) {
	lines := append(append([]string{}, addToolLines...), "1", "T1", "5")
	ta := newTestApp(t, script(lines...))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))
	assert.Contains(t, ta.out.String(), "Error: Tool name must be unique!")
}

func TestMenuRejectsBadInput(t *testing.T) {
	ta := newTestApp(t, script("2", "9", "1", "T1", "abc", "1", "T1", "500", "4", "5"))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))

	out := ta.out.String()
	assert.Contains(t, out, "Error: Add tools before adding parts!")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Contains(t, out, `Error: "abc" is not a number`)
	assert.Contains(t, out, "Error: tool diameter must be between 1 and 200 mm")

	cat, err := ta.Store.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.Tools)
}

func TestMenuAddPartWithRiser(t *testing.T) {
	lines := append([]string{}, addToolLines...)
	lines = append(lines,
		"3", "R1", "0", "150", "20", "30",
		"2", "1234", "100", "80", "2.5", "2", "1", "yes", "1",
		"5",
	)
	ta := newTestApp(t, script(lines...))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))

	out := ta.out.String()
	assert.Contains(t, out, "1. T1 (Diameter: 40 mm)")
	assert.Contains(t, out, "1. R1 (Height: 20 mm)")
	assert.Contains(t, out, "Part added successfully!")

	cat, err := ta.Store.Load()
	require.NoError(t, err)
	part := cat.FindPart("1234")
	require.NotNil(t, part)
	assert.Equal(t, "T1", part.Tool)
	assert.Equal(t, "R1", part.Riser)
	assert.Equal(t, 2, part.TableCount)
}

func TestMenuPartRiserMissing(t *testing.T) {
	lines := append([]string{}, addToolLines...)
	lines = append(lines, "2", "1234", "100", "80", "2.5", "", "1", "yes", "5")
	ta := newTestApp(t, script(lines...))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))
	assert.Contains(t, ta.out.String(), "Error: Add risers before assigning to parts!")
}

func TestMenuGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.nc")
	lines := append([]string{}, addToolLines...)
	lines = append(lines,
		"2", "1234", "100", "80", "2.5", "", "1", "no",
		"4", "1", path,
		"5",
	)
	ta := newTestApp(t, script(lines...))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))
	assert.Contains(t, ta.out.String(), "G-Code for part 1234 written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "M3 S955")
}

func TestMenuUndoRedo(t *testing.T) {
	lines := append([]string{}, addToolLines...)
	lines = append(lines, "6", "6", "7", "5")
	ta := newTestApp(t, script(lines...))
	require.Equal(t, 0, ta.Execute([]string{"menu"}))

	out := ta.out.String()
	assert.Contains(t, out, "Undone: add tool T1")
	assert.Contains(t, out, "Nothing to undo.")
	assert.Contains(t, out, "Redone: add tool T1")

	cat, err := ta.Store.Load()
	require.NoError(t, err)
	assert.Len(t, cat.Tools, 1)
}

func TestMenuEndOfInput(t *testing.T) {
	ta := newTestApp(t, script("1", "T1"))
	assert.Equal(t, 0, ta.Execute([]string{"menu"}))
	assert.NotContains(t, ta.out.String(), "Tool added successfully!")
}

func TestMenuReadError(t *testing.T) {
	ta := newTestApp(t, "")
	ta.Stdin = iotest.ErrReader(errors.New("tty gone"))
	assert.Equal(t, 1, ta.Execute([]string{"menu"}))
	assert.Contains(t, ta.err.String(), "read input: tty gone")
}

func TestMenuReadErrorDuringPrompt(t *testing.T) {
	ta := newTestApp(t, "")
	ta.Stdin = io.MultiReader(strings.NewReader(script("1", "T1")), iotest.ErrReader(errors.New("tty gone")))
	assert.Equal(t, 1, ta.Execute([]string{"menu"}))
	assert.Contains(t, ta.err.String(), "read input: tty gone")
	assert.NotContains(t, ta.out.String(), "Tool added successfully!")
}
