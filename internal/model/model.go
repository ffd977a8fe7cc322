package model

// Tool is a cutter in the shop's catalog. SpindleSpeed and FeedRate are
// fixed when the tool is created, either from the calculator or by hand.
type Tool struct {
	Name         string  `json:"name"`
	Diameter     float64 `json:"diameter"`      // mm
	Inserts      int     `json:"inserts"`       // cutting inserts on the body
	ToolNumber   int     `json:"tool_number"`   // magazine pocket
	Length       float64 `json:"length"`        // mm, gauge length
	SpindleSpeed int     `json:"spindle_speed"` // RPM
	FeedRate     int     `json:"feed_rate"`     // mm/min
}

// Radius returns half the cutter diameter.
func (t Tool) Radius() float64 {
	return t.Diameter / 2.0
}

// Riser is a circular raised fixture on the table that has to be cleared
// while cutting. Center coordinates are table coordinates.
type Riser struct {
	Name     string  `json:"name"`
	Diameter float64 `json:"diameter"` // mm
	CenterX  float64 `json:"center_x"` // mm
	CenterY  float64 `json:"center_y"` // mm
	Height   float64 `json:"height"`   // mm above the table
}

// Radius returns half the riser diameter.
func (r Riser) Radius() float64 {
	return r.Diameter / 2.0
}

// Part is a workpiece to be machined. TableCount is how many identical
// copies are clamped and cut in the same program.
type Part struct {
	Name       string  `json:"name"` // 4-6 digit number
	DimensionX float64 `json:"dimension_x"`
	DimensionY float64 `json:"dimension_y"`
	CutDepth   float64 `json:"cut_depth"`
	TableCount int     `json:"table_count"`
	Tool       string  `json:"tool"`            // Tool.Name
	Riser      string  `json:"riser,omitempty"` // Riser.Name, empty when none
}

// HasRiser reports whether the part references a riser.
func (p Part) HasRiser() bool {
	return p.Riser != ""
}

// MachineSettings holds the machining constants used by the planner.
// None of these are hard-coded; the shop sets them per machine.
type MachineSettings struct {
	// Feed/speed calculator
	SurfaceSpeed  float64 `json:"surface_speed" mapstructure:"surface_speed"`   // m/min
	ChipThickness float64 `json:"chip_thickness" mapstructure:"chip_thickness"` // mm per insert per rev

	// Depth sequencer
	MaxStepDown   float64 `json:"max_step_down" mapstructure:"max_step_down"`   // deepest roughing pass, mm
	MinFinalStep  float64 `json:"min_final_step" mapstructure:"min_final_step"` // smallest worthwhile remainder, mm
	FinishingPass float64 `json:"finishing_pass" mapstructure:"finishing_pass"` // mandatory last pass, mm

	// Placement resolver
	ClearanceFactor float64 `json:"clearance_factor" mapstructure:"clearance_factor"` // x cutter diameter
	MarginY         float64 `json:"margin_y" mapstructure:"margin_y"`                 // mm
	BaseOffset      float64 `json:"base_offset" mapstructure:"base_offset"`           // two-part offset from table centre, mm

	// Diameter given to stored risers that have none, mm. Zero means such
	// rows are rejected.
	RiserDiameter float64 `json:"riser_diameter" mapstructure:"riser_diameter"`

	// Program
	SafeZ        float64 `json:"safe_z" mapstructure:"safe_z"` // mm above part top
	GCodeProfile string  `json:"gcode_profile" mapstructure:"gcode_profile"`
}

func DefaultSettings() MachineSettings {
	return MachineSettings{
		SurfaceSpeed:    120.0,
		ChipThickness:   0.2,
		MaxStepDown:     0.8,
		MinFinalStep:    0.1,
		FinishingPass:   0.1,
		ClearanceFactor: 0.3,
		MarginY:         10.0,
		BaseOffset:      20.0,
		SafeZ:           10.0,
		GCodeProfile:    "Generic",
	}
}

// GCodeProfile defines a post-processor configuration for different CNC controllers.
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"

	// Startup codes
	StartCode    []string `json:"start_code"`    // Commands at start of file
	ToolChange   string   `json:"tool_change"`   // Tool select, e.g. "T%d M6"; empty if unsupported
	LengthOffset string   `json:"length_offset"` // Tool length compensation, e.g. "G43 H%d"
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%d")
	SpindleStop  string   `json:"spindle_stop"`  // Spindle off command

	// Motion
	RapidMove string `json:"rapid_move"` // G0 or equivalent
	FeedMove  string `json:"feed_move"`  // G1 or equivalent

	// End codes
	EndCode []string `json:"end_code"`

	// Comment style
	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"` // ")" for parenthesised comments

	DecimalPlaces int `json:"decimal_places"`
}

// Built-in GCode profiles
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		ToolChange:    "T%d M6",
		LengthOffset:  "G43 H%d",
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		ToolChange:    "T%d M6",
		LengthOffset:  "G43 H%d",
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		ToolChange:    "T%d M6",
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// ProgramEnd is the program-end word written after the profile's end codes.
// M30 rewinds on controllers that support it; M2 everywhere else.
func (p GCodeProfile) ProgramEnd() string {
	if p.Name == "Mach3" {
		return "M30"
	}
	return "M2"
}

// GetProfile returns a GCode profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1] // Return Generic (last one)
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range GCodeProfiles {
		names = append(names, p.Name)
	}
	return names
}
