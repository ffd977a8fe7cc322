package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

func (a *App) cmdTool(args []string) error {
	verb, rest, err := subcommand("tool", args, "add", "list", "delete")
	if err != nil {
		return err
	}
	switch verb {
	case "add":
		return a.toolAdd(rest)
	case "list":
		return a.toolList()
	default:
		return a.deleteEntity("tool", rest, (*model.Catalog).DeleteTool)
	}
}

func (a *App) toolAdd(args []string) error {
	fs := a.newFlagSet("tool add")
	name := fs.String("name", "", "Tool name (unique).")
	diameter := fs.Float64("diameter", 0, "Cutter diameter in mm (1-200).")
	inserts := fs.Int("inserts", 0, "Number of inserts (1-24).")
	number := fs.Int("number", 0, "Tool number in the magazine (1-10).")
	length := fs.Float64("length", 0, "Tool length in mm.")
	rpm := fs.Int("rpm", 0, "Spindle speed override; calculated when 0.")
	feed := fs.Int("feed", 0, "Feed rate override in mm/min; calculated when 0.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	tool := model.Tool{
		Name:         nameArg(*name, fs),
		Diameter:     *diameter,
		Inserts:      *inserts,
		ToolNumber:   *number,
		Length:       *length,
		SpindleSpeed: *rpm,
		FeedRate:     *feed,
	}
	var suggested *toolpath.FeedSpeed
	if tool.SpindleSpeed == 0 || tool.FeedRate == 0 {
		calc, err := a.planner().Suggest(tool.Diameter, tool.Inserts)
		if err != nil {
			// Range errors read better than the degenerate-input error.
			if verr := tool.Validate(); verr != nil {
				return verr
			}
			return err
		}
		if tool.SpindleSpeed == 0 {
			tool.SpindleSpeed = calc.SpindleSpeed
		}
		if tool.FeedRate == 0 {
			tool.FeedRate = calc.FeedRate
		}
		suggested = &calc
	}

	cat, err := a.load()
	if err != nil {
		return err
	}
	if err := cat.AddTool(tool); err != nil {
		return err
	}
	if err := a.save(cat, "add tool "+tool.Name); err != nil {
		return err
	}
	if suggested != nil {
		fmt.Fprintf(a.Stdout, "Suggested Spindle Speed: %d RPM\n", suggested.SpindleSpeed)
		fmt.Fprintf(a.Stdout, "Suggested Feed Rate: %d mm/min\n", suggested.FeedRate)
	}
	fmt.Fprintf(a.Stdout, "Tool %s added (S%d F%d).\n", tool.Name, tool.SpindleSpeed, tool.FeedRate)
	return nil
}

func (a *App) toolList() error {
	cat, err := a.load()
	if err != nil {
		return err
	}
	writeTools(a, cat)
	return nil
}

func writeTools(a *App, cat *model.Catalog) {
	if len(cat.Tools) == 0 {
		fmt.Fprintln(a.Stdout, "No tools.")
		return
	}
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIAMETER\tINSERTS\tRPM\tFEED\tT\tLENGTH")
	for _, t := range cat.Tools {
		fmt.Fprintf(tw, "%s\t%g\t%d\t%d\t%d\t%d\t%g\n", t.Name, t.Diameter, t.Inserts, t.SpindleSpeed, t.FeedRate, t.ToolNumber, t.Length)
	}
	tw.Flush()
}

func (a *App) cmdRiser(args []string) error {
	verb, rest, err := subcommand("riser", args, "add", "list", "delete")
	if err != nil {
		return err
	}
	switch verb {
	case "add":
		return a.riserAdd(rest)
	case "list":
		return a.riserList()
	default:
		return a.deleteEntity("riser", rest, (*model.Catalog).DeleteRiser)
	}
}

func (a *App) riserAdd(args []string) error {
	fs := a.newFlagSet("riser add")
	name := fs.String("name", "", "Riser name (unique).")
	x := fs.Float64("x", 0, "Centre X in table coordinates (mm).")
	y := fs.Float64("y", 0, "Centre Y in table coordinates (mm).")
	height := fs.Float64("height", 0, "Height above the table (mm).")
	diameter := fs.Float64("diameter", 0, "Riser diameter (mm).")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	riser := model.Riser{Name: nameArg(*name, fs), CenterX: *x, CenterY: *y, Height: *height, Diameter: *diameter}
	cat, err := a.load()
	if err != nil {
		return err
	}
	if err := cat.AddRiser(riser); err != nil {
		return err
	}
	if err := a.save(cat, "add riser "+riser.Name); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Riser %s added.\n", riser.Name)
	return nil
}

func (a *App) riserList() error {
	cat, err := a.load()
	if err != nil {
		return err
	}
	writeRisers(a, cat)
	return nil
}

func writeRisers(a *App, cat *model.Catalog) {
	if len(cat.Risers) == 0 {
		fmt.Fprintln(a.Stdout, "No risers.")
		return
	}
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tX\tY\tHEIGHT\tDIAMETER")
	for _, r := range cat.Risers {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\n", r.Name, r.CenterX, r.CenterY, r.Height, r.Diameter)
	}
	tw.Flush()
}

func (a *App) cmdPart(args []string) error {
	verb, rest, err := subcommand("part", args, "add", "list", "delete")
	if err != nil {
		return err
	}
	switch verb {
	case "add":
		return a.partAdd(rest)
	case "list":
		return a.partList()
	default:
		return a.deleteEntity("part", rest, (*model.Catalog).DeletePart)
	}
}

func (a *App) partAdd(args []string) error {
	fs := a.newFlagSet("part add")
	name := fs.String("name", "", "Part number (4-6 digits).")
	x := fs.Float64("x", 0, "Dimension X in mm (10-450).")
	y := fs.Float64("y", 0, "Dimension Y in mm (10-450).")
	depth := fs.Float64("depth", 0, "Total cut depth in mm (1-10).")
	tool := fs.String("tool", "", "Tool name.")
	riser := fs.String("riser", "", "Riser name, if the part has one.")
	tables := fs.Int("tables", 1, "Copies on the table (1 or 2).")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	part := model.Part{
		Name:       nameArg(*name, fs),
		DimensionX: *x,
		DimensionY: *y,
		CutDepth:   *depth,
		TableCount: *tables,
		Tool:       *tool,
		Riser:      *riser,
	}
	cat, err := a.load()
	if err != nil {
		return err
	}
	if err := cat.AddPart(part); err != nil {
		return err
	}
	if err := a.save(cat, "add part "+part.Name); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Part %s added.\n", part.Name)
	return nil
}

func (a *App) partList() error {
	cat, err := a.load()
	if err != nil {
		return err
	}
	writeParts(a, cat)
	return nil
}

func writeParts(a *App, cat *model.Catalog) {
	if len(cat.Parts) == 0 {
		fmt.Fprintln(a.Stdout, "No parts.")
		return
	}
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tX\tY\tDEPTH\tTABLES\tTOOL\tRISER")
	for _, p := range cat.Parts {
		riser := p.Riser
		if riser == "" {
			riser = "-"
		}
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%d\t%s\t%s\n", p.Name, p.DimensionX, p.DimensionY, p.CutDepth, p.TableCount, p.Tool, riser)
	}
	tw.Flush()
}

func (a *App) deleteEntity(noun string, args []string, del func(*model.Catalog, string) error) error {
	fs := a.newFlagSet(noun + " delete")
	name := fs.String("name", "", "Name to delete.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	target := nameArg(*name, fs)
	if target == "" {
		return usageErr("%s delete needs a name", noun)
	}

	cat, err := a.load()
	if err != nil {
		return err
	}
	if err := del(cat, target); err != nil {
		return err
	}
	if err := a.save(cat, "delete "+noun+" "+target); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Deleted %s %s.\n", noun, target)
	return nil
}
