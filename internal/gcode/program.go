package gcode

import (
	"fmt"
	"strings"

	"github.com/piwi3910/MillPath/internal/model"
)

// Kind classifies an instruction.
type Kind int

const (
	KindBlank     Kind = iota // empty separator line
	KindComment               // operator-facing comment
	KindDirective             // machine state word(s): G90, M3 S434, T1 M6 ...
	KindRapid                 // G0 positioning move
	KindFeed                  // G1 cutting move with an explicit feed rate
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindDirective:
		return "directive"
	case KindRapid:
		return "rapid"
	case KindFeed:
		return "feed"
	default:
		return "blank"
	}
}

// Axis is a bit set of the words carried by a move.
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ
	AxisF
)

// Instruction is one line of a program before it is rendered for a
// particular controller.
type Instruction struct {
	Kind Kind    `json:"kind"`
	Text string  `json:"text,omitempty"` // comment text or directive words
	Axes Axis    `json:"axes,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Z    float64 `json:"z,omitempty"`
	F    float64 `json:"f,omitempty"`
}

// Has reports whether the move carries the given word.
func (in Instruction) Has(a Axis) bool {
	return in.Axes&a != 0
}

func Blank() Instruction                 { return Instruction{Kind: KindBlank} }
func Comment(text string) Instruction    { return Instruction{Kind: KindComment, Text: text} }
func Directive(words string) Instruction { return Instruction{Kind: KindDirective, Text: words} }

func RapidXY(x, y float64) Instruction {
	return Instruction{Kind: KindRapid, Axes: AxisX | AxisY, X: x, Y: y}
}

func RapidZ(z float64) Instruction {
	return Instruction{Kind: KindRapid, Axes: AxisZ, Z: z}
}

func FeedXY(x, y, f float64) Instruction {
	return Instruction{Kind: KindFeed, Axes: AxisX | AxisY | AxisF, X: x, Y: y, F: f}
}

func FeedZ(z, f float64) Instruction {
	return Instruction{Kind: KindFeed, Axes: AxisZ | AxisF, Z: z, F: f}
}

// Program is an ordered instruction list.
type Program []Instruction

// Count returns the number of instructions of kind k.
func (p Program) Count(k Kind) int {
	n := 0
	for _, in := range p {
		if in.Kind == k {
			n++
		}
	}
	return n
}

// Format renders the program as text for the given controller profile.
func (p Program) Format(profile model.GCodeProfile) string {
	var b strings.Builder
	f := formatter{profile: profile}
	for _, in := range p {
		b.WriteString(f.line(in))
		b.WriteString("\n")
	}
	return b.String()
}

// Lines renders the program one line per instruction.
func (p Program) Lines(profile model.GCodeProfile) []string {
	f := formatter{profile: profile}
	out := make([]string, len(p))
	for i, in := range p {
		out[i] = f.line(in)
	}
	return out
}

type formatter struct {
	profile model.GCodeProfile
}

func (f formatter) line(in Instruction) string {
	switch in.Kind {
	case KindComment:
		return f.profile.CommentPrefix + " " + in.Text + f.profile.CommentSuffix
	case KindDirective:
		return in.Text
	case KindRapid:
		return f.move(f.profile.RapidMove, in)
	case KindFeed:
		return f.move(f.profile.FeedMove, in)
	default:
		return ""
	}
}

func (f formatter) move(code string, in Instruction) string {
	var b strings.Builder
	b.WriteString(code)
	if in.Has(AxisX) {
		b.WriteString(" X" + f.format(in.X))
	}
	if in.Has(AxisY) {
		b.WriteString(" Y" + f.format(in.Y))
	}
	if in.Has(AxisZ) {
		b.WriteString(" Z" + f.format(in.Z))
	}
	if in.Has(AxisF) {
		b.WriteString(" F" + f.format(in.F))
	}
	return b.String()
}

// format formats a coordinate according to the profile's decimal places.
func (f formatter) format(v float64) string {
	s := fmt.Sprintf("%.*f", f.profile.DecimalPlaces, v)
	// Render negative zero as zero.
	if strings.Trim(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}
