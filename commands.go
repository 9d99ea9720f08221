package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"

	"costconsole/handlers"
	"costconsole/locales"
	"costconsole/services"
)

// registerCommands adds the offline export and tree commands to the
// PocketBase root command.
func registerCommands(app *pocketbase.PocketBase, env *handlers.Env) {
	app.RootCmd.AddCommand(exportCommand(env))
	app.RootCmd.AddCommand(treeCommand(env))
}

func commandLanguage(env *handlers.Env, code string) locales.Language {
	def := locales.Default
	if env.Config != nil {
		def = locales.Parse(env.Config.DefaultLanguage, locales.Default)
	}
	return locales.Parse(code, def)
}

func exportCommand(env *handlers.Env) *cobra.Command {
	var (
		entity, out, format, lang, search string
		includeRef                        bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a master-data grid to xlsx or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			l := commandLanguage(env, lang)

			var (
				table services.FlatTable
				title string
				err   error
			)
			switch entity {
			case "material":
				title = "Material_Properties"
				table, err = env.Data.MaterialExport(ctx, services.MaterialFilter{Text: search, IncludeRef: includeRef}, l)
			case "machine":
				title = "Machines"
				table, err = env.Data.MachineExport(ctx, services.MachineFilter{Text: search, IncludeRef: includeRef}, l)
			case "price":
				title = "Material_Prices"
				table, err = env.Data.PriceExport(ctx, services.PriceFilter{Text: search, AllPeriods: true, IncludeRef: includeRef}, l)
			default:
				return fmt.Errorf("unknown entity %q (material, machine, price)", entity)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", entity, err)
			}

			data := services.ExportData{Title: title, GeneratedAt: time.Now(), Table: table}
			var body []byte
			switch format {
			case handlers.FormatExcel:
				body, err = services.GenerateExcel(data)
			case handlers.FormatPDF:
				body, err = services.GeneratePDF(data)
			default:
				return fmt.Errorf("unknown format %q (xlsx, pdf)", format)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			if out == "" {
				out = data.FileStem() + "." + format
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(table.Rows), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "material", "grid to export: material, machine or price")
	cmd.Flags().StringVar(&out, "out", "", "output file (default <Title>_<date>.<format>)")
	cmd.Flags().StringVar(&format, "format", handlers.FormatExcel, "xlsx or pdf")
	cmd.Flags().StringVar(&lang, "lang", "", "display language (ko, en)")
	cmd.Flags().StringVar(&search, "q", "", "text filter")
	cmd.Flags().BoolVar(&includeRef, "ref", false, "include reference data")
	return cmd
}

func treeCommand(env *handlers.Env) *cobra.Command {
	var expand, lang string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the cost explorer roots, optionally expanding one node",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			l := commandLanguage(env, lang)
			fetcher := services.CostTreeFetcher{Exec: env.Exec, Database: env.Config.Databases.PCM}
			x := services.NewExplorer(fetcher, services.NewRecordParser(l.DBLocale()), env.Log)

			if err := x.LoadRoots(ctx); err != nil {
				return fmt.Errorf("load roots: %w", err)
			}
			if expand != "" {
				if err := x.Expand(ctx, expand); err != nil {
					return fmt.Errorf("expand %s: %w", expand, err)
				}
			}
			printTree(cmd.OutOrStdout(), x.Snapshot())
			return nil
		},
	}
	cmd.Flags().StringVar(&expand, "expand", "", "unique id of a node to expand")
	cmd.Flags().StringVar(&lang, "lang", "", "display language (ko, en)")
	return cmd
}

func printTree(w io.Writer, nodes []services.TreeNode) {
	for _, n := range services.VisibleNodes(nodes) {
		marker := " "
		switch {
		case !n.HasChildren():
		case n.Expanded:
			marker = "-"
		default:
			marker = "+"
		}
		fmt.Fprintf(w, "%s%s %s [%s] %s\n", strings.Repeat("  ", n.Depth), marker, n.DisplayName, n.Kind, n.UniqueID)
	}
}
