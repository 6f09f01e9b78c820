package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eduvid/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the content catalog and detection history",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogSightingsCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			objects, err := store.Objects(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, objects)
			}
			rows := make([][]string, 0, len(objects))
			for _, obj := range objects {
				quizzes, err := store.Quizzes(cmd.Context(), obj.Key)
				if err != nil {
					return err
				}
				rows = append(rows, []string{obj.Key, obj.Name, obj.Category,
					strconv.Itoa(len(obj.Features)), strconv.Itoa(len(quizzes))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Key"},
				{title: "Name"},
				{title: "Category"},
				{title: "Features", right: true},
				{title: "Quizzes", right: true},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <object>",
		Short: "Show an object's feature card and quizzes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			name := strings.Join(args, " ")
			obj, err := store.Lookup(cmd.Context(), name)
			if err != nil {
				return err
			}
			if obj == nil {
				return fmt.Errorf("%q is not in the catalog", name)
			}
			quizzes, err := store.Quizzes(cmd.Context(), obj.Key)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, struct {
					Object  *catalog.Object `json:"object"`
					Quizzes []catalog.Quiz  `json:"quizzes"`
				}{obj, quizzes})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", obj.Name, obj.Category)
			for _, f := range obj.Features {
				fmt.Fprintf(out, "  - %s: %s\n", f.Title, f.Detail)
			}
			for _, q := range quizzes {
				fmt.Fprintf(out, "\nQ%d. %s\n", q.ID, q.Question)
				for i, opt := range q.Options {
					marker := " "
					if i == q.CorrectIndex {
						marker = "*"
					}
					fmt.Fprintf(out, "  %s %d) %s\n", marker, i, opt)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newCatalogSightingsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "sightings",
		Short: "List recently confirmed subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			sightings, err := store.Sightings(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, sightings)
			}
			out := cmd.OutOrStdout()
			if len(sightings) == 0 {
				fmt.Fprintln(out, "No sightings recorded")
				return nil
			}
			rows := make([][]string, 0, len(sightings))
			for _, s := range sightings {
				rows = append(rows, []string{
					s.ConfirmedAt.Local().Format(time.DateTime),
					s.Label,
					fmt.Sprintf("%.0f%%", s.Confidence*100),
					shortID(s.SessionID),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "Confirmed"},
				{title: "Subject"},
				{title: "Confidence", right: true},
				{title: "Session"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sightings to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
