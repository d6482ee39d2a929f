package main

import (
	"convenios-dashboard/internal/assignment"
	"convenios-dashboard/internal/convenio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type ingestSummary struct {
	Files          []string `json:"files" yaml:"files"`
	Records        int      `json:"records" yaml:"records"`
	MissingFields  []string `json:"missing_fields" yaml:"missing_fields"`
	UnknownHeaders []string `json:"unknown_headers" yaml:"unknown_headers"`
	DroppedRows    int      `json:"dropped_rows" yaml:"dropped_rows"`
	Exported       int      `json:"exported" yaml:"exported"`
}

func newIngestCmd(a *app) *cobra.Command {
	var (
		ufs     []string
		search  string
		queues  []string
		filters []string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "ingest [flags] files...",
		Short: "Consolidate spreadsheets and export the filtered table",
		Long: `Reads the given .xlsx/.csv files, merges them by instrument or proposal
number, joins the stored assignments and prints a summary. With --out the
filtered table is written as CSV ("-" for stdout).

Examples:
  convctl ingest painel.xlsx coordenacoes.xlsx
  convctl ingest --uf SP --queue over_365_no_exec --out atrasados.csv painel.xlsx
  convctl ingest --filter global_value_min=1000000 --out - painel.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(a.output)
			if err != nil {
				return err
			}

			uploads := make([]convenio.Upload, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				uploads = append(uploads, convenio.Upload{Filename: filepath.Base(path), Content: content})
			}

			assignments := assignment.NewService(assignment.NewRepository(a.db))
			ingester := convenio.NewIngester(assignments, a.logger.Named("ingest"), a.concurrency)
			res, err := ingester.Ingest(cmd.Context(), uploads)
			if err != nil {
				return err
			}

			q, err := filterValues(ufs, search, queues, filters)
			if err != nil {
				return err
			}
			filtered := convenio.ParseFilter(q).Apply(res.Table)

			summary := ingestSummary{
				Files:          args,
				Records:        res.Table.Len(),
				MissingFields:  res.MissingFields,
				UnknownHeaders: res.UnknownHeaders,
				DroppedRows:    res.DroppedRows,
			}
			if out != "" {
				if err := writeExport(cmd.OutOrStdout(), out, filtered); err != nil {
					return err
				}
				summary.Exported = filtered.Len()
				if out == "-" {
					return nil
				}
			}

			return printOutput(cmd.OutOrStdout(), format, summary,
				[]string{"key", "value"},
				[][]string{
					{"files", strings.Join(summary.Files, ", ")},
					{"records", strconv.Itoa(summary.Records)},
					{"missing_fields", strings.Join(summary.MissingFields, ", ")},
					{"unknown_headers", strings.Join(summary.UnknownHeaders, ", ")},
					{"dropped_rows", strconv.Itoa(summary.DroppedRows)},
					{"exported", strconv.Itoa(summary.Exported)},
				})
		},
	}

	cmd.Flags().StringSliceVar(&ufs, "uf", nil, "Keep only these UFs")
	cmd.Flags().StringVar(&search, "q", "", "Global search over the searchable columns")
	cmd.Flags().StringSliceVar(&queues, "queue", nil, "Keep records that are in every one of these queues (flag names)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Extra filter as column=value, same names as the HTTP query")
	cmd.Flags().StringVar(&out, "out", "", "Write the filtered table as CSV to this file")
	return cmd
}

// filterValues assembles the flags into the query form ParseFilter reads.
func filterValues(ufs []string, search string, queues, filters []string) (url.Values, error) {
	q := url.Values{}
	for _, uf := range ufs {
		q.Add(convenio.FieldUF, uf)
	}
	if search != "" {
		q.Set("q", search)
	}
	for _, queue := range queues {
		q.Add("queue", queue)
	}
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --filter %q, expected column=value", f)
		}
		q.Add(strings.TrimSpace(key), value)
	}
	return q, nil
}

func writeExport(stdout io.Writer, out string, t *convenio.Table) error {
	if out == "-" {
		return t.WriteCSV(stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
