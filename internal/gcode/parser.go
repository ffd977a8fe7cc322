package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

// GCodeMove represents a single parsed movement from GCode.
type GCodeMove struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Length returns the straight-line distance travelled by the move.
func (m GCodeMove) Length() float64 {
	dx := m.ToX - m.FromX
	dy := m.ToY - m.FromY
	dz := m.ToZ - m.FromZ
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// ParseGCode parses a GCode string into a slice of structured moves.
// It tracks absolute position state and classifies each G0/G1 command
// by its movement characteristics (rapid, feed, plunge, retract).
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove

	// Current machine state
	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0

	for _, line := range strings.Split(code, "\n") {
		line = StripComment(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		isRapid := hasWord(upper, "G0", "G00")
		isFeed := hasWord(upper, "G1", "G01")
		if !isRapid && !isFeed {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, GCodeMove{
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// StripComment removes semicolon and parenthetical comments and trims the line.
func StripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return strings.TrimSpace(line)
}

// hasWord reports whether the first word of line is one of codes.
func hasWord(line string, codes ...string) bool {
	first := line
	if idx := strings.IndexAny(line, " \t"); idx >= 0 {
		first = line[:idx]
	}
	for _, c := range codes {
		if first == c {
			return true
		}
	}
	return false
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Summary aggregates a parsed program for the operator.
type Summary struct {
	Moves         int     `json:"moves"`
	Rapids        int     `json:"rapids"`
	Cuts          int     `json:"cuts"`
	Plunges       int     `json:"plunges"`
	RapidDistance float64 `json:"rapid_distance"` // mm
	CutDistance   float64 `json:"cut_distance"`   // mm, feed moves and plunges
	CutMinutes    float64 `json:"cut_minutes"`    // at the programmed feed rates
	MinZ          float64 `json:"min_z"`
	MaxZ          float64 `json:"max_z"`
	MinX, MaxX    float64
	MinY, MaxY    float64
}

// Summarize computes distances, time at feed and the machined envelope.
func Summarize(moves []GCodeMove) Summary {
	s := Summary{Moves: len(moves)}
	if len(moves) == 0 {
		return s
	}
	first := moves[0]
	s.MinX, s.MaxX = first.ToX, first.ToX
	s.MinY, s.MaxY = first.ToY, first.ToY
	s.MinZ, s.MaxZ = first.ToZ, first.ToZ

	for _, m := range moves {
		s.MinX = math.Min(s.MinX, m.ToX)
		s.MaxX = math.Max(s.MaxX, m.ToX)
		s.MinY = math.Min(s.MinY, m.ToY)
		s.MaxY = math.Max(s.MaxY, m.ToY)
		s.MinZ = math.Min(s.MinZ, m.ToZ)
		s.MaxZ = math.Max(s.MaxZ, m.ToZ)

		switch m.Type {
		case MoveRapid, MoveRetract:
			s.Rapids++
			s.RapidDistance += m.Length()
		case MovePlunge, MoveFeed:
			if m.Type == MovePlunge {
				s.Plunges++
			} else {
				s.Cuts++
			}
			d := m.Length()
			s.CutDistance += d
			if m.FeedRate > 0 {
				s.CutMinutes += d / m.FeedRate
			}
		}
	}
	return s
}
