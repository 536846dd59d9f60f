package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/edmcli/config"
	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/grid"
	"github.com/dimasma0305/edmcli/internal/edmcli/importer"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
	"github.com/dimasma0305/edmcli/internal/log"
)

// importBackend is everything an import talks to. *edmapi.Service satisfies it.
type importBackend interface {
	importer.Creator
	grid.Backend
	ViewGroup(ctx context.Context, id member.ID) (*member.Group, error)
}

type importOptions struct {
	GroupID     member.ID
	SkipRows    int
	MaxRows     int
	Concurrency int
	Retries     int
	Yes         bool
	Map         bool
	SaveMapping bool
}

var (
	importGroup       string
	importSkipRows    int
	importMaxRows     int
	importConcurrency int
	importRetries     int
	importYes         bool
	importMap         bool
)

var memberImportCmd = &cobra.Command{
	Use:   "import <file-or-url>",
	Short: "Import members from an xlsx spreadsheet",
	Long: `Import members from the first sheet of an xlsx file or URL.

The row after --skip-rows holds the headers. Each later row becomes one member;
headers are matched through import.column_mapping in .edm/conf.yaml.
Rows that fail validation are reported and never sent. Rows the remote rejects
or could not receive can be retried in the same session.`,
	Example: `  # Import into group 3, confirming first
  edmcli member import members.xlsx --group 3

  # Skip two title rows and do not prompt
  edmcli member import https://example.com/export.xlsx --group 3 --skip-rows 2 --yes

  # Pick the columns by hand
  edmcli member import members.xlsx --group 3 --map`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		opts := importOptions{
			GroupID:     member.ID(importGroup),
			SkipRows:    s.conf.Import.SkipRows,
			MaxRows:     s.conf.Import.MaxRows,
			Concurrency: s.conf.Import.Concurrency,
			Retries:     importRetries,
			Yes:         importYes,
			Map:         importMap,
		}
		if cmd.Flags().Changed("skip-rows") {
			opts.SkipRows = importSkipRows
		}
		if cmd.Flags().Changed("max-rows") {
			opts.MaxRows = importMaxRows
		}
		if cmd.Flags().Changed("concurrency") {
			opts.Concurrency = importConcurrency
		}

		if _, err := runImport(ctx, s.svc, s.conf, args[0], opts); err != nil {
			log.Fatal("%v", err)
		}
	},
}

// runImport reads source, previews the rows, submits them to opts.GroupID and reports.
// The returned error is nil only when every row succeeded.
func runImport(ctx context.Context, backend importBackend, conf *config.Config, source string, opts importOptions) (*importer.Batch, error) {
	if opts.GroupID == "" {
		return nil, errors.Wrap(errors.ErrMissingRequired, "--group")
	}

	group, err := backend.ViewGroup(ctx, opts.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group %s: %w", opts.GroupID, err)
	}
	if group.Status == member.StatusInactive {
		log.Warn("Group %s (%s) is disabled", group.Name, group.ID)
	}

	log.Info("Reading %s", source)
	table, err := sheet.ReadSource(ctx, source, sheet.Options{SkipRows: opts.SkipRows, MaxRows: opts.MaxRows})
	if err != nil {
		return nil, err
	}
	log.InfoH2("Sheet %q: %d data rows, headers %s", table.Sheet, len(table.Rows), strings.Join(table.Headers, ", "))
	if len(table.Rows) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptySheet, "sheet %q has no data rows", table.Sheet)
	}

	cm, err := conf.ColumnMap()
	if err != nil {
		return nil, err
	}
	cm, err = resolveColumns(table, cm, conf, opts)
	if err != nil {
		return nil, err
	}
	log.DebugH2("Column mapping: %s", cm)

	members, rowErrs := cm.NormalizeAll(table.Rows)
	invalid := 0
	for i, err := range rowErrs {
		if err != nil {
			invalid++
			log.InfoH3("line %d: %v", table.Lines[i], err)
		}
	}
	valid := len(members) - invalid
	log.Info("%d rows ready, %d invalid", valid, invalid)
	if valid == 0 {
		return nil, errors.Wrap(errors.ErrValidation, "no row can be imported")
	}

	if !opts.Yes {
		ok, err := confirm(fmt.Sprintf("Import %d members into group %s (%s)?", valid, group.Name, group.ID), true)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Info("Import canceled")
			return nil, nil
		}
	}

	coord := importer.New(backend, importer.Options{
		Concurrency: opts.Concurrency,
		OnResult: func(r importer.Result) {
			if r.Outcome == importer.OutcomeSuccess {
				log.DebugH2("line %d: created member %s", table.Lines[r.SourceRow], r.Record.ID)
			}
		},
	})
	batch := coord.Import(ctx, table.Rows, cm, opts.GroupID)
	printBatch(batch, table.Lines)

	for attempt := 1; len(batch.Retryable()) > 0 && ctx.Err() == nil; attempt++ {
		retry := attempt <= opts.Retries
		if !retry && !opts.Yes {
			retry, err = confirm(fmt.Sprintf("Retry %d failed rows?", len(batch.Retryable())), false)
			if err != nil {
				break
			}
		}
		if !retry {
			break
		}
		batch = coord.Retry(ctx, batch)
		printBatch(batch, table.Lines)
	}

	reportGroupSize(ctx, backend, opts.GroupID)
	return batch, batch.Err()
}

// resolveColumns checks the sheet against cm and falls back to choosing columns by hand
func resolveColumns(table *sheet.Table, cm member.ColumnMap, conf *config.Config, opts importOptions) (member.ColumnMap, error) {
	missing := cm.Missing(table.Headers)
	if len(missing) == 0 && !opts.Map {
		return cm, nil
	}
	if opts.Yes {
		return nil, errors.Wrapf(errors.ErrMissingRequired, "no column for %v in headers %v, use --map or import.column_mapping", missing, table.Headers)
	}
	if len(missing) > 0 {
		log.Warn("No column found for %v, choose them now", missing)
	}

	cm, err := selectColumns(table, cm)
	if err != nil {
		return nil, err
	}

	save := opts.SaveMapping
	if !save {
		if save, err = confirm("Save this column mapping to .edm/conf.yaml?", false); err != nil {
			return nil, err
		}
	}
	if save {
		conf.SetColumnMapping(cm)
		if err := config.SaveColumnMapping(".", cm); err != nil {
			log.Error("Failed to save column mapping: %v", err)
		}
	}
	return cm, nil
}

// reportGroupSize queries the group's members so the totals reflect the import
func reportGroupSize(ctx context.Context, backend grid.Backend, groupID member.ID) {
	ctrl := grid.New(backend, grid.Options{PageSize: 1, Filters: map[string]string{"group_id": string(groupID)}})
	if err := ctrl.Query(ctx); err != nil {
		log.Debug("Could not count group members: %v", err)
		return
	}
	log.Info("Group %s now has %d members", groupID, ctrl.Snapshot().Total)
}

func init() {
	memberCmd.AddCommand(memberImportCmd)

	memberImportCmd.Flags().StringVarP(&importGroup, "group", "g", "", "Group id to import into (required)")
	memberImportCmd.Flags().IntVar(&importSkipRows, "skip-rows", 0, "Rows above the header row (defaults to import.skip_rows)")
	memberImportCmd.Flags().IntVar(&importMaxRows, "max-rows", 0, "Refuse sheets with more data rows than this")
	memberImportCmd.Flags().IntVarP(&importConcurrency, "concurrency", "c", config.DefaultConcurrency, "Creation requests in flight")
	memberImportCmd.Flags().IntVar(&importRetries, "retries", 0, "Retry failed rows this many times without asking")
	memberImportCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Do not prompt")
	memberImportCmd.Flags().BoolVar(&importMap, "map", false, "Choose the spreadsheet columns interactively")
	_ = memberImportCmd.MarkFlagRequired("group")
}
