package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/piwi3910/MillPath/internal/gcode"
	"github.com/piwi3910/MillPath/internal/model"
)

// errEOF ends the menu when stdin runs out.
var errEOF = errors.New("end of input")

// inputError is a failure reading stdin. It ends the menu with an error.
type inputError struct{ err error }

func (e *inputError) Error() string { return "read input: " + e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

// menu is the interactive console workflow: add tools, parts and risers,
// generate a program, undo or redo catalog changes.
type menu struct {
	app  *App
	in   *bufio.Scanner
	cat  *model.Catalog
	hist *History
}

func (a *App) cmdMenu(args []string) error {
	fs := a.newFlagSet("menu")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cat, err := a.load()
	if err != nil {
		return err
	}
	m := &menu{app: a, in: bufio.NewScanner(a.Stdin), cat: cat, hist: NewHistory()}
	return m.run()
}

func (m *menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.app.Stdout, format, args...)
}

func (m *menu) run() error {
	for {
		m.printf("\n--- CNC G-Code Generator ---\n")
		m.printf("1. Add Tool\n")
		m.printf("2. Add Part\n")
		m.printf("3. Add Riser\n")
		m.printf("4. Generate G-Code\n")
		m.printf("5. Exit\n")
		m.printf("6. Undo\n")
		m.printf("7. Redo\n")
		choice, err := m.ask("Select an option: ")
		if errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = m.addTool()
		case "2":
			err = m.addPart()
		case "3":
			err = m.addRiser()
		case "4":
			err = m.generate()
		case "5":
			m.printf("Exiting program.\n")
			return nil
		case "6":
			m.undo()
		case "7":
			m.redo()
		default:
			m.printf("Invalid choice. Please try again.\n")
		}
		var ie *inputError
		switch {
		case errors.Is(err, errEOF):
			return nil
		case errors.As(err, &ie):
			return err
		case err != nil:
			m.printf("Error: %v\n", err)
		}
	}
}

func (m *menu) ask(prompt string) (string, error) {
	m.printf("%s", prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", &inputError{err}
		}
		return "", errEOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *menu) askFloat(prompt string) (float64, error) {
	s, err := m.ask(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func (m *menu) askInt(prompt string) (int, error) {
	s, err := m.ask(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return v, nil
}

func (m *menu) askYes(prompt string) (bool, error) {
	s, err := m.ask(prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(s, "yes"), nil
}

// commit applies change to the catalog, saves it and records the previous
// state for undo. A failed change leaves the catalog untouched.
func (m *menu) commit(label string, change func(*model.Catalog) error) error {
	before := MakeSnapshot(m.cat, label)
	next := m.cat.Clone()
	if err := change(next); err != nil {
		return err
	}
	if err := m.app.save(next, label); err != nil {
		return err
	}
	m.cat = next
	m.hist.Push(before)
	return nil
}

func (m *menu) addTool() error {
	m.printf("\n--- Add Tool ---\n")
	name, err := m.ask("Enter tool name: ")
	if err != nil {
		return err
	}
	if m.cat.FindTool(name) != nil {
		m.printf("Error: Tool name must be unique!\n")
		return nil
	}

	tool := model.Tool{Name: name}
	if tool.Diameter, err = m.askFloat("Enter tool diameter (1-200 mm): "); err != nil {
		return err
	}
	if tool.Inserts, err = m.askInt("Enter number of inserts (1-24): "); err != nil {
		return err
	}
	if tool.Diameter < model.MinToolDiameter || tool.Diameter > model.MaxToolDiameter {
		return fmt.Errorf("tool diameter must be between %g and %g mm", model.MinToolDiameter, model.MaxToolDiameter)
	}
	if tool.Inserts < model.MinInserts || tool.Inserts > model.MaxInserts {
		return fmt.Errorf("inserts must be between %d and %d", model.MinInserts, model.MaxInserts)
	}
	suggested, err := m.app.planner().Suggest(tool.Diameter, tool.Inserts)
	if err != nil {
		return err
	}
	m.printf("Suggested Spindle Speed: %d RPM\n", suggested.SpindleSpeed)
	m.printf("Suggested Feed Rate: %d mm/min\n", suggested.FeedRate)
	tool.SpindleSpeed, tool.FeedRate = suggested.SpindleSpeed, suggested.FeedRate

	happy, err := m.askYes("Are you happy with these values? (yes/no): ")
	if err != nil {
		return err
	}
	if !happy {
		if tool.SpindleSpeed, err = m.askInt("Enter custom Spindle Speed (RPM): "); err != nil {
			return err
		}
		if tool.FeedRate, err = m.askInt("Enter custom Feed Rate (mm/min): "); err != nil {
			return err
		}
	}
	if tool.ToolNumber, err = m.askInt("Enter tool number (1-10): "); err != nil {
		return err
	}
	if tool.Length, err = m.askFloat("Enter tool length (mm): "); err != nil {
		return err
	}

	if err := m.commit("add tool "+name, func(c *model.Catalog) error { return c.AddTool(tool) }); err != nil {
		return err
	}
	m.printf("Tool added successfully!\n")
	return nil
}

func (m *menu) addPart() error {
	if len(m.cat.Tools) == 0 {
		m.printf("Error: Add tools before adding parts!\n")
		return nil
	}
	m.printf("\n--- Add Part ---\n")
	name, err := m.ask("Enter part name (4-6 digit number): ")
	if err != nil {
		return err
	}
	if model.ValidatePartName(name) != nil {
		m.printf("Error: Part name must be a 4-6 digit number!\n")
		return nil
	}
	if m.cat.FindPart(name) != nil {
		m.printf("Error: Part name must be unique!\n")
		return nil
	}

	part := model.Part{Name: name, TableCount: 1}
	if part.DimensionX, err = m.askFloat("Enter part dimension X (10-450 mm): "); err != nil {
		return err
	}
	if part.DimensionY, err = m.askFloat("Enter part dimension Y (10-450 mm): "); err != nil {
		return err
	}
	if part.CutDepth, err = m.askFloat("Enter total cut depth (1-10 mm): "); err != nil {
		return err
	}
	tables, err := m.ask("Enter number of parts on the table (1-2) [1]: ")
	if err != nil {
		return err
	}
	if tables != "" {
		if part.TableCount, err = strconv.Atoi(tables); err != nil {
			return fmt.Errorf("%q is not a whole number", tables)
		}
	}

	m.printf("\nAvailable Tools:\n")
	for i, t := range m.cat.Tools {
		m.printf("%d. %s (Diameter: %g mm)\n", i+1, t.Name, t.Diameter)
	}
	choice, err := m.askInt("Enter the number of the tool to use: ")
	if err != nil {
		return err
	}
	if choice < 1 || choice > len(m.cat.Tools) {
		m.printf("Error: Invalid tool choice!\n")
		return nil
	}
	part.Tool = m.cat.Tools[choice-1].Name

	hasRiser, err := m.askYes("Does this part have a riser? (yes/no): ")
	if err != nil {
		return err
	}
	if hasRiser {
		if len(m.cat.Risers) == 0 {
			m.printf("Error: Add risers before assigning to parts!\n")
			return nil
		}
		m.printf("\nAvailable Risers:\n")
		for i, r := range m.cat.Risers {
			m.printf("%d. %s (Height: %g mm)\n", i+1, r.Name, r.Height)
		}
		choice, err := m.askInt("Enter the number of the riser to use: ")
		if err != nil {
			return err
		}
		if choice < 1 || choice > len(m.cat.Risers) {
			m.printf("Error: Invalid riser choice!\n")
			return nil
		}
		part.Riser = m.cat.Risers[choice-1].Name
	}

	if err := m.commit("add part "+name, func(c *model.Catalog) error { return c.AddPart(part) }); err != nil {
		return err
	}
	m.printf("Part added successfully!\n")
	return nil
}

func (m *menu) addRiser() error {
	m.printf("\n--- Add Riser ---\n")
	name, err := m.ask("Enter riser name: ")
	if err != nil {
		return err
	}
	if m.cat.FindRiser(name) != nil {
		m.printf("Error: Riser name must be unique!\n")
		return nil
	}

	riser := model.Riser{Name: name}
	if riser.CenterX, err = m.askFloat("Enter riser center X: "); err != nil {
		return err
	}
	if riser.CenterY, err = m.askFloat("Enter riser center Y: "); err != nil {
		return err
	}
	if riser.Height, err = m.askFloat("Enter riser height (mm): "); err != nil {
		return err
	}
	if riser.Diameter, err = m.askFloat("Enter riser diameter (mm): "); err != nil {
		return err
	}

	if err := m.commit("add riser "+name, func(c *model.Catalog) error { return c.AddRiser(riser) }); err != nil {
		return err
	}
	m.printf("Riser added successfully!\n")
	return nil
}

func (m *menu) generate() error {
	m.printf("\n--- Generate G-Code ---\n")
	if len(m.cat.Parts) == 0 {
		m.printf("Error: Add parts before generating G-Code!\n")
		return nil
	}
	m.printf("\nAvailable Parts:\n")
	for i, p := range m.cat.Parts {
		m.printf("%d. %s (%g x %g mm, tool %s)\n", i+1, p.Name, p.DimensionX, p.DimensionY, p.Tool)
	}
	choice, err := m.askInt("Enter the number of the part to machine: ")
	if err != nil {
		return err
	}
	if choice < 1 || choice > len(m.cat.Parts) {
		m.printf("Error: Invalid part choice!\n")
		return nil
	}
	part := m.cat.Parts[choice-1]

	path, err := m.ask(fmt.Sprintf("Output file [%s.nc]: ", part.Name))
	if err != nil {
		return err
	}
	if path == "" {
		path = part.Name + ".nc"
	}

	plan, err := m.app.planner().PlanFromCatalog(m.cat, part.Name, 0)
	if err != nil {
		return err
	}
	for _, w := range gcode.FormatConflictWarnings(plan, gcode.CheckLayout(plan)) {
		m.printf("Warning: %s\n", w)
	}
	gen := m.app.generator("")
	gen.ProgramID = uuid.NewString()
	if err := os.WriteFile(path, []byte(gen.Generate(plan)), 0o644); err != nil {
		return err
	}
	m.printf("G-Code for part %s written to %s (%d passes).\n", part.Name, path, plan.PassCount())
	return nil
}

func (m *menu) undo() {
	if !m.hist.CanUndo() {
		m.printf("Nothing to undo.\n")
		return
	}
	label := m.hist.UndoLabel()
	prev, _ := m.hist.Undo(MakeSnapshot(m.cat, label))
	m.restore(prev, "undo "+label)
	m.printf("Undone: %s\n", label)
}

func (m *menu) redo() {
	if !m.hist.CanRedo() {
		m.printf("Nothing to redo.\n")
		return
	}
	label := m.hist.RedoLabel()
	next, _ := m.hist.Redo(MakeSnapshot(m.cat, label))
	m.restore(next, "redo "+label)
	m.printf("Redone: %s\n", label)
}

func (m *menu) restore(s Snapshot, label string) {
	m.cat = s.Catalog.Clone()
	if err := m.app.save(m.cat, label); err != nil {
		m.printf("Error: %v\n", err)
	}
}
