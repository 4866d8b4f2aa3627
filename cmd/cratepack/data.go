package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CratePack/internal/model"
	"github.com/piwi3910/CratePack/internal/project"
)

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage reusable packing list templates",
	}

	var (
		in          inputFlags
		description string
	)
	save := &cobra.Command{
		Use:   "save NAME",
		Short: "Save the given boxes, bin and settings as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.load(cmd, &in)
			if err != nil {
				return err
			}
			path := project.TemplatesPath(a.cfg.DataDir)
			store, err := project.LoadTemplates(path)
			if err != nil {
				return err
			}
			if old := store.FindByName(args[0]); old != nil {
				store.Remove(old.ID)
			}
			store.Add(model.NewProjectTemplate(args[0], description, job.items, job.container, job.settings))
			if err := project.SaveTemplates(path, store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q with %d boxes\n", args[0], len(job.boxes))
			return nil
		},
	}
	in.register(save)
	save.Flags().StringVar(&description, "description", "", "template description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(project.TemplatesPath(a.cfg.DataDir))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBOXES\tCONTAINER\tSTRATEGY\tDESCRIPTION")
			for _, t := range store.Templates {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					t.Name, len(model.ExpandItems(t.Items)), t.Container.Label, t.Settings.Strategy, t.Description)
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.TemplatesPath(a.cfg.DataDir)
			store, err := project.LoadTemplates(path)
			if err != nil {
				return err
			}
			t := store.FindByName(args[0])
			if t == nil {
				return fmt.Errorf("template %q not found", args[0])
			}
			store.Remove(t.ID)
			return project.SaveTemplates(path, store)
		},
	}

	cmd.AddCommand(save, list, remove)
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "List, share and import optimizer profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List optimizer profiles and container presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROFILE\tSTRATEGY\tPOP\tELITE\tGENERATIONS")
			for _, p := range a.inventory.Profiles {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", p.Name, p.Strategy, p.PopulationSize, p.EliteCount, p.Generations)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "CONTAINER\tWIDTH\tHEIGHT\tDEPTH\tMAX WEIGHT")
			for _, c := range a.inventory.Containers {
				fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\n", c.Name, c.Width, c.Height, c.Depth, c.MaxWeight)
			}
			return tw.Flush()
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export NAME FILE",
		Short: "Write an optimizer profile to a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.inventory.FindProfileByName(args[0])
			if p == nil {
				return fmt.Errorf("optimizer profile %q not found", args[0])
			}
			return project.ExportProfile(args[1], *p)
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add an optimizer profile from a JSON file to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			project.AddProfile(&a.inventory, p)
			if err := project.SaveInventory(project.InventoryPath(a.cfg.DataDir), a.inventory); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported profile %q\n", p.Name)
			return nil
		},
	}

	cmd.AddCommand(list, exportCmd, importCmd)
	return cmd
}

func newDataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Back up and restore preferences, inventory and templates",
	}

	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write all user data to one backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := project.LoadTemplates(project.TemplatesPath(a.cfg.DataDir))
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], a.appConfig, a.inventory, templates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}

	var mergeOnly bool
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore user data from a backup file",
		Long: `Import replaces preferences and templates with the backup and merges
its containers and profiles into the inventory. With --inventory-only
only the inventory is merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mergeOnly {
				inv, err := project.ImportInventory(args[0], a.inventory)
				if err != nil {
					return err
				}
				return project.SaveInventory(project.InventoryPath(a.cfg.DataDir), inv)
			}
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.RestoreAllData(a.cfg.DataDir, backup); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s (version %s)\n", backup.CreatedAt, backup.Version)
			return nil
		},
	}
	importCmd.Flags().BoolVar(&mergeOnly, "inventory-only", false, "merge an exported inventory file instead of a full backup")

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}
