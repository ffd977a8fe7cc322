package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/export"
	"github.com/piwi3910/MillPath/internal/gcode"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

func (a *App) cmdCalc(args []string) error {
	fs := a.newFlagSet("calc")
	diameter := fs.Float64("diameter", 0, "Cutter diameter in mm.")
	inserts := fs.Int("inserts", 0, "Number of inserts.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	suggested, err := a.planner().Suggest(*diameter, *inserts)
	if err != nil {
		return usageErr("calc: %v", err)
	}
	fmt.Fprintf(a.Stdout, "Suggested Spindle Speed: %d RPM\n", suggested.SpindleSpeed)
	fmt.Fprintf(a.Stdout, "Suggested Feed Rate: %d mm/min\n", suggested.FeedRate)
	return nil
}

func (a *App) cmdSteps(args []string) error {
	fs := a.newFlagSet("steps")
	depth := fs.Float64("depth", 0, "Total cut depth in mm.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	steps, err := toolpath.StepDowns(*depth, a.planner().StepRules())
	if err != nil {
		return usageErr("steps: %v", err)
	}
	cum := toolpath.CumulativeDepths(steps)
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PASS\tSTEP\tDEPTH")
	for i, s := range steps {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\n", i+1, s, cum[i])
	}
	return tw.Flush()
}

// jobFlags are shared by the commands that plan one part.
type jobFlags struct {
	part   *string
	tables *int
}

func (a *App) addJobFlags(fsName string) (*jobFlags, *flag.FlagSet) {
	fs := a.newFlagSet(fsName)
	return &jobFlags{
		part:   fs.String("part", "", "Part name."),
		tables: fs.Int("tables", 0, "Copies on the table (1 or 2); defaults to the part's own count."),
	}, fs
}

// plan loads the catalog and plans the part named by the flags.
func (a *App) plan(jf *jobFlags, fs *flag.FlagSet) (toolpath.Plan, error) {
	name := nameArg(*jf.part, fs)
	if name == "" {
		return toolpath.Plan{}, usageErr("%s needs -part", fs.Name())
	}
	if *jf.tables != 0 && *jf.tables != 1 && *jf.tables != 2 {
		return toolpath.Plan{}, usageErr("-tables must be 1 or 2")
	}
	cat, err := a.load()
	if err != nil {
		return toolpath.Plan{}, err
	}
	return a.planner().PlanFromCatalog(cat, name, *jf.tables)
}

// warn prints layout conflicts for plan to stderr and returns them.
func (a *App) warn(plan toolpath.Plan) []string {
	warnings := gcode.FormatConflictWarnings(plan, gcode.CheckLayout(plan))
	for _, w := range warnings {
		fmt.Fprintf(a.Stderr, "Warning: %s\n", w)
	}
	return warnings
}

func (a *App) cmdGenerate(args []string) error {
	jf, fs := a.addJobFlags("generate")
	profile := fs.String("profile", "", "G-code profile; defaults to the configured one.")
	out := fs.String("o", "", "Output file; stdout when empty or \"-\".")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	plan, err := a.plan(jf, fs)
	if err != nil {
		return err
	}
	a.warn(plan)

	gen := a.generator(*profile)
	gen.ProgramID = uuid.NewString()
	code := gen.Generate(plan)

	if *out == "" || *out == "-" {
		_, err = io.WriteString(a.Stdout, code)
		return err
	}
	if err := os.WriteFile(*out, []byte(code), 0o644); err != nil {
		return fmt.Errorf("failed to write program: %w", err)
	}
	a.Log.Info("program written",
		zap.String("program_id", gen.ProgramID),
		zap.String("part", plan.Part.Name),
		zap.String("profile", gen.Profile().Name),
		zap.String("path", *out),
	)
	fmt.Fprintf(a.Stdout, "Program %s written to %s (%d copies, %d passes).\n", gen.ProgramID, *out, plan.TableCount(), plan.PassCount())
	return nil
}

func (a *App) cmdInspect(args []string) error {
	fs := a.newFlagSet("inspect")
	check := fs.Bool("check", false, "Also check the program's syntax.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("inspect needs one G-code file")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if *check {
		if err := gcode.CheckSyntax(string(data)); err != nil {
			return fmt.Errorf("%s: %w", fs.Arg(0), err)
		}
		fmt.Fprintln(a.Stdout, "Syntax OK.")
	}
	s := gcode.Summarize(gcode.ParseGCode(string(data)))
	writeSummary(a.Stdout, s)
	return nil
}

func writeSummary(w io.Writer, s gcode.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Moves:\t%d (%d rapid, %d cut, %d plunge)\n", s.Moves, s.Rapids, s.Cuts, s.Plunges)
	fmt.Fprintf(tw, "Rapid distance:\t%.1f mm\n", s.RapidDistance)
	fmt.Fprintf(tw, "Cut distance:\t%.1f mm\n", s.CutDistance)
	fmt.Fprintf(tw, "Cut time:\t%.1f min\n", s.CutMinutes)
	fmt.Fprintf(tw, "X range:\t%.3f .. %.3f\n", s.MinX, s.MaxX)
	fmt.Fprintf(tw, "Y range:\t%.3f .. %.3f\n", s.MinY, s.MaxY)
	fmt.Fprintf(tw, "Z range:\t%.3f .. %.3f\n", s.MinZ, s.MaxZ)
	tw.Flush()
}

func (a *App) cmdSheet(args []string) error {
	jf, fs := a.addJobFlags("sheet")
	profile := fs.String("profile", "", "G-code profile printed on the sheet.")
	out := fs.String("o", "", "Setup sheet PDF; defaults to <part>-setup.pdf.")
	labels := fs.String("labels", "", "Also write part labels to this PDF.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	plan, err := a.plan(jf, fs)
	if err != nil {
		return err
	}

	gen := a.generator(*profile)
	gen.ProgramID = uuid.NewString()
	job := export.Job{
		ProgramID: gen.ProgramID,
		Profile:   gen.Profile().Name,
		Summary:   gcode.Summarize(gcode.ParseGCode(gen.Generate(plan))),
		Warnings:  a.warn(plan),
	}

	path := *out
	if path == "" {
		path = plan.Part.Name + "-setup.pdf"
	}
	if err := export.ExportSetupSheet(path, plan, job); err != nil {
		return fmt.Errorf("failed to write setup sheet: %w", err)
	}
	fmt.Fprintf(a.Stdout, "Setup sheet written to %s.\n", path)

	if *labels != "" {
		if err := export.ExportLabels(*labels, job.ProgramID, plan); err != nil {
			return fmt.Errorf("failed to write labels: %w", err)
		}
		fmt.Fprintf(a.Stdout, "Labels written to %s.\n", *labels)
	}
	a.Log.Info("setup sheet written", zap.String("program_id", job.ProgramID), zap.String("part", plan.Part.Name))
	return nil
}

func (a *App) cmdLayout(args []string) error {
	jf, fs := a.addJobFlags("layout")
	out := fs.String("o", "", "DXF file; defaults to <part>-layout.dxf.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	plan, err := a.plan(jf, fs)
	if err != nil {
		return err
	}
	a.warn(plan)

	path := *out
	if path == "" {
		path = plan.Part.Name + "-layout.dxf"
	}
	if !strings.EqualFold(filepath.Ext(path), ".dxf") {
		path += ".dxf"
	}
	if err := export.ExportLayoutDXF(path, plan); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	fmt.Fprintf(a.Stdout, "Layout written to %s.\n", path)
	return nil
}
