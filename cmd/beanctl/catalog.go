package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"beanline/pkg/catalog"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and check the criteria catalog",
	}
	cmd.AddCommand(catalogStagesCmd(), catalogShowCmd(), catalogCheckCmd())
	return cmd
}

func loadCatalog() (*catalog.Catalog, error) {
	return catalog.FromFiles(settings.GetString("catalog_file"), settings.GetString("catalog_xlsx"))
}

func catalogStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List stages with their criteria counts and waste limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tCRITERIA\tREQUIRED\tREASONS\tMAX WASTE %")
			for _, code := range cat.Stages() {
				list := cat.Criteria(code)
				req := 0
				for _, cr := range list {
					if cr.Required {
						req++
					}
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\n", code, len(list), req, len(cat.FailureReasons(code)), cat.MaxWastePercent(string(code)))
			}
			return w.Flush()
		},
	}
}

func bound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <stage>",
		Short: "Show the criteria and failure reasons of one stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := catalog.ParseStageCode(args[0])
			if err != nil {
				return err
			}
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (max waste %.1f%%)\n\n", code, cat.MaxWastePercent(string(code)))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tMIN\tMAX\tTARGET\tUNIT\tWEIGHT\tREQUIRED")
			for _, cr := range cat.Criteria(code) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%v\n",
					cr.ID, cr.Name, cr.Type, bound(cr.Min), bound(cr.Max), bound(cr.Target), cr.Unit, cr.Weight, cr.Required)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			reasons := cat.MostSevere(code, -1)
			if len(reasons) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tSEVERITY\tCATEGORY\tNAME")
			for _, r := range reasons {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Code, r.Severity, r.Category, r.Name)
			}
			return w.Flush()
		},
	}
}

func catalogCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a catalog YAML or criteria sheet against the built-in defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var (
				cat *catalog.Catalog
				err error
			)
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml":
				cat, err = catalog.FromFiles(path, "")
			default:
				cat, err = catalog.FromFiles("", path)
			}
			if err != nil {
				return err
			}
			n := 0
			for _, code := range cat.Stages() {
				n += len(cat.Criteria(code))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d stages, %d criteria\n", path, len(cat.Stages()), n)
			return nil
		},
	}
}
