package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/importer"
	"github.com/piwi3910/CratePack/internal/model"
	"github.com/piwi3910/CratePack/internal/project"
)

// inputFlags selects the boxes, the bin template and the solver settings.
type inputFlags struct {
	boxesPath   string
	projectPath string
	template    string
	bin         string
	container   string
	maxWeight   float64
	strategy    string
	rotate      string
	grow        string
	prune       int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.boxesPath, "boxes", "", "packing list to import (.csv, .tsv, .xlsx)")
	fs.StringVar(&f.projectPath, "project", "", "project file to load items, container and settings from")
	fs.StringVar(&f.template, "template", "", "saved template to start from")
	fs.StringVar(&f.bin, "bin", "", "bin extents as WxHxD, e.g. 120x180x80")
	fs.StringVar(&f.container, "container", "", "container preset name from the inventory")
	fs.Float64Var(&f.maxWeight, "max-weight", 0, "bin weight limit, 0 for unlimited")
	fs.StringVar(&f.strategy, "strategy", "", "placement strategy ("+strategyNames()+")")
	fs.StringVar(&f.rotate, "rotate", "", "allowed rotations, e.g. xyz, y or none")
	fs.StringVar(&f.grow, "grow", "", "pack into one bin that grows along this axis (x, y or z)")
	fs.IntVar(&f.prune, "prune", 0, "prune contained free spaces every N placements")
}

// input is a resolved packing problem.
type input struct {
	name      string
	items     []model.Item
	boxes     []model.Box
	container model.Container
	settings  model.Settings
}

func strategyNames() string {
	names := make([]string, 0, len(model.Strategies()))
	for _, s := range model.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// parseDims reads extents written as WxHxD. The separator may be x, X or *.
func parseDims(s string) (model.Vec3, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == 'x' || r == 'X' || r == '*' })
	if len(fields) != 3 {
		return model.Vec3{}, fmt.Errorf("bin %q: want WxHxD", s)
	}
	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return model.Vec3{}, fmt.Errorf("bin %q: %w", s, err)
		}
		if n < 0 {
			return model.Vec3{}, fmt.Errorf("bin %q: extents must not be negative", s)
		}
		v[i] = n
	}
	return model.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// load resolves the flags into a packing problem. A project or template
// provides the starting point; flags given on the command line override it.
func (a *app) load(cmd *cobra.Command, f *inputFlags) (input, error) {
	in := input{name: "Untitled", settings: a.defaults}
	haveContainer := false

	switch {
	case f.projectPath != "":
		p, err := project.LoadProject(f.projectPath)
		if err != nil {
			return in, err
		}
		in.name, in.items, in.container, in.settings = p.Name, p.Items, p.Container, p.Settings
		haveContainer = true
	case f.template != "":
		store, err := project.LoadTemplates(project.TemplatesPath(a.cfg.DataDir))
		if err != nil {
			return in, fmt.Errorf("load templates: %w", err)
		}
		t := store.FindByName(f.template)
		if t == nil {
			return in, fmt.Errorf("template %q not found", f.template)
		}
		p := t.ToProject(t.Name)
		in.name, in.items, in.container, in.settings = p.Name, p.Items, p.Container, p.Settings
		haveContainer = true
	}

	if f.boxesPath != "" {
		res := importer.Import(f.boxesPath)
		for _, w := range res.Warnings {
			a.logger.Warn("import", zap.String("file", f.boxesPath), zap.String("warning", w))
		}
		if len(res.Errors) > 0 {
			return in, fmt.Errorf("import %s: %s", f.boxesPath, strings.Join(res.Errors, "; "))
		}
		in.items = res.Items
	}

	switch {
	case f.container != "":
		preset := a.inventory.FindContainerByName(f.container)
		if preset == nil {
			return in, fmt.Errorf("container preset %q not found", f.container)
		}
		in.container = preset.ToContainer()
	case f.bin != "":
		size, err := parseDims(f.bin)
		if err != nil {
			return in, err
		}
		in.container = model.NewContainer("Custom", size.X, size.Y, size.Z)
	case !haveContainer:
		preset := a.inventory.FindContainerByName(a.appConfig.DefaultContainer)
		if preset == nil {
			return in, errors.New("no bin given: use --bin or --container")
		}
		in.container = preset.ToContainer()
	}
	if cmd.Flags().Changed("max-weight") {
		in.container.MaxWeight = f.maxWeight
	}

	if err := f.apply(cmd, &in.settings, a.logger); err != nil {
		return in, err
	}

	in.boxes = model.ExpandItems(in.items)
	if len(in.boxes) == 0 {
		return in, engine.ErrNoBoxes
	}
	return in, nil
}

// apply copies the solver flags set on the command line into s. An
// unknown grow axis falls back to y with a warning.
func (f *inputFlags) apply(cmd *cobra.Command, s *model.Settings, logger *zap.Logger) error {
	fs := cmd.Flags()
	if fs.Changed("strategy") {
		st := model.Strategy(f.strategy)
		if !st.Valid() {
			return fmt.Errorf("unknown strategy %q (want %s)", f.strategy, strategyNames())
		}
		s.Strategy = st
	}
	if fs.Changed("rotate") {
		m, err := model.ParseRotationMask(f.rotate)
		if err != nil {
			return err
		}
		s.Rotations = m
	}
	if fs.Changed("grow") {
		axis, ok := model.ParseAxis(f.grow)
		if !ok {
			logger.Warn("invalid grow axis, using y", zap.String("axis", f.grow))
			axis = model.AxisY
		}
		s.Growing = true
		s.GrowAxis = axis
	}
	if fs.Changed("prune") {
		s.PruneInterval = f.prune
	}
	return nil
}
