package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/importer"
	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/project"
)

func (a *App) cmdImport(args []string) error {
	fs := a.newFlagSet("import")
	height := fs.Float64("height", 0, "Riser height for DXF imports (mm).")
	prefix := fs.String("prefix", "R", "Riser name prefix for DXF imports.")
	dryRun := fs.Bool("dry-run", false, "Report what would be imported without saving.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageErr("import needs at least one file")
	}

	var res importer.ImportResult
	im := importer.New(a.Config.Machine)
	for _, path := range fs.Args() {
		var r importer.ImportResult
		if strings.EqualFold(filepath.Ext(path), ".dxf") {
			if !(*height > 0) {
				return usageErr("DXF import needs -height")
			}
			r = importer.ImportRisersDXF(path, *height, *prefix)
		} else {
			r = im.ImportFile(path)
		}
		res.Tools = append(res.Tools, r.Tools...)
		res.Risers = append(res.Risers, r.Risers...)
		res.Parts = append(res.Parts, r.Parts...)
		res.Errors = append(res.Errors, r.Errors...)
		res.Warnings = append(res.Warnings, r.Warnings...)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(a.Stderr, "Warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(a.Stderr, "Error: %s\n", e)
	}

	cat, err := a.load()
	if err != nil {
		return err
	}
	merged := importer.Merge(cat, res)
	for _, s := range merged.Skipped {
		fmt.Fprintf(a.Stderr, "Skipped: %s\n", s)
	}
	for _, r := range merged.Rejected {
		fmt.Fprintf(a.Stderr, "Rejected: %s\n", r)
	}
	fmt.Fprintf(a.Stdout, "Imported %d tools, %d risers, %d parts.\n", merged.Tools, merged.Risers, merged.Parts)

	if *dryRun || merged.Tools+merged.Risers+merged.Parts == 0 {
		return nil
	}
	return a.save(cat, fmt.Sprintf("import %d records", merged.Tools+merged.Risers+merged.Parts))
}

func (a *App) cmdExport(args []string) error {
	fs := a.newFlagSet("export")
	out := fs.String("o", "catalog.xlsx", "Workbook to write.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cat, err := a.load()
	if err != nil {
		return err
	}
	if err := importer.ExportXLSX(*out, cat); err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}
	fmt.Fprintf(a.Stdout, "Catalog written to %s.\n", *out)
	return nil
}

func (a *App) cmdBackup(args []string) error {
	fs := a.newFlagSet("backup")
	out := fs.String("o", "millpath-backup.json", "Backup file to write.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cat, err := a.load()
	if err != nil {
		return err
	}
	backup, err := project.ExportBackup(*out, cat, a.Config.Machine, a.Profiles.Custom)
	if err != nil {
		return err
	}
	a.Log.Info("backup written", zap.String("id", backup.ID), zap.String("path", *out))
	fmt.Fprintf(a.Stdout, "Backup %s written to %s.\n", backup.ID, *out)
	return nil
}

func (a *App) cmdRestore(args []string) error {
	fs := a.newFlagSet("restore")
	withProfiles := fs.Bool("profiles", true, "Also restore custom G-code profiles.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("restore needs one backup file")
	}
	backup, err := project.ImportBackup(fs.Arg(0))
	if err != nil {
		return err
	}
	cat := backup.Catalog
	if err := a.save(&cat, "restore backup "+backup.ID); err != nil {
		return err
	}
	if *withProfiles && len(backup.Profiles) > 0 {
		for _, p := range backup.Profiles {
			if err := a.Profiles.Add(p); err != nil {
				fmt.Fprintf(a.Stderr, "Warning: profile %q not restored: %v\n", p.Name, err)
			}
		}
		if err := a.saveProfiles(); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.Stdout, "Restored %d tools, %d risers, %d parts from backup %s (%s).\n",
		len(cat.Tools), len(cat.Risers), len(cat.Parts), backup.ID, backup.CreatedAt)
	return nil
}

func (a *App) saveProfiles() error {
	path := project.ProfilesPath(a.Store.Dir)
	if err := project.SaveCustomProfiles(path, a.Profiles.Custom); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	a.Log.Debug("profiles saved", zap.String("path", path), zap.Int("custom", len(a.Profiles.Custom)))
	return nil
}

func (a *App) cmdProfiles(args []string) error {
	verb, rest, err := subcommand("profiles", args, "list", "import", "export", "remove")
	if err != nil {
		return err
	}
	fs := a.newFlagSet("profiles " + verb)
	out := fs.String("o", "", "Output file for export; defaults to <name>.json.")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	switch verb {
	case "list":
		tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tDESCRIPTION")
		for _, p := range a.Profiles.All() {
			kind := "custom"
			if model.IsBuiltInProfile(p.Name) {
				kind = "built-in"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, kind, p.Description)
		}
		return tw.Flush()

	case "import":
		if fs.NArg() != 1 {
			return usageErr("profiles import needs one JSON file")
		}
		p, err := project.ImportProfile(fs.Arg(0))
		if err != nil {
			return err
		}
		if err := a.Profiles.Add(p); err != nil {
			return err
		}
		if err := a.saveProfiles(); err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "Profile %s imported.\n", p.Name)
		return nil

	case "export":
		if fs.NArg() != 1 {
			return usageErr("profiles export needs a profile name")
		}
		name := fs.Arg(0)
		if !a.Profiles.Has(name) {
			return fmt.Errorf("profile %q: %w", name, model.ErrNotFound)
		}
		path := *out
		if path == "" {
			path = name + ".json"
		}
		if err := project.ExportProfile(path, a.Profiles.Get(name)); err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "Profile %s written to %s.\n", name, path)
		return nil

	default:
		if fs.NArg() != 1 {
			return usageErr("profiles remove needs a profile name")
		}
		if err := a.Profiles.Remove(fs.Arg(0)); err != nil {
			return err
		}
		if err := a.saveProfiles(); err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "Profile %s removed.\n", fs.Arg(0))
		return nil
	}
}
