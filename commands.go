package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"saltbath/config"
	"saltbath/database"
	"saltbath/ingest"
	"saltbath/loader"
	"saltbath/model"
	"saltbath/parsers"
	"saltbath/render"
	"saltbath/report"
	"saltbath/sheet"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup, check, report and ingest API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if addr == "" {
				addr = config.GetConfig().ListenAddr
			}
			mux := http.NewServeMux()
			SetupRoutes(mux, db)

			zap.S().Infof("Starting server at http://localhost%s", addr)
			server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newArchiveCmd() *cobra.Command {
	var file, sheetName string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Ingest the archive of past reports",
		Long: `Reads the summary workbook of past acceptance reports (by default total.xlsx,
sheet 111) from row 5 down and appends every part number to the store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if file == "" {
				file = cfg.ArchivePath
			}
			if sheetName == "" {
				sheetName = cfg.ArchiveSheet
			}
			return runWorkbookIngest(cmd, file, sheetName, sheet.ArchiveLayout())
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "archive workbook (default from config)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default from config)")
	return cmd
}

func newEntryCmd() *cobra.Command {
	var sheetName, product string

	cmd := &cobra.Command{
		Use:   "entry <workbook>",
		Short: "Ingest a standard laboratory entry workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if sheetName == "" {
				sheetName = cfg.EntrySheet
			}
			if product == "" {
				product = cfg.ProductFilter
			}
			return runWorkbookIngest(cmd, args[0], sheetName, sheet.EntryLayout(product))
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default: first sheet)")
	cmd.Flags().StringVar(&product, "product", "", "only rows whose product cell contains this text (default from config)")
	return cmd
}

func runWorkbookIngest(cmd *cobra.Command, file, sheetName string, layout sheet.Layout) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	wb, err := sheet.OpenWorkbook(file)
	if err != nil {
		return err
	}
	defer wb.Close()

	summary, err := ingestWorkbook(cmd.Context(), ingest.NewService(db), wb, sheetName, layout)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

// ingestWorkbook reads one sheet with the given layout and ingests it as one batch.
// An empty sheetName selects the first sheet.
func ingestWorkbook(ctx context.Context, svc *ingest.Service, wb *sheet.Workbook, sheetName string, layout sheet.Layout) (*model.IngestSummary, error) {
	if sheetName == "" {
		names := wb.SheetNames()
		if len(names) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", wb.Path())
		}
		sheetName = names[0]
	}

	defaultPartition := parsers.CurrentPartitionYear(time.Now())
	drafts, err := sheet.ReadDrafts(wb, sheetName, layout, defaultPartition)
	if err != nil {
		return nil, err
	}
	source := fmt.Sprintf("%s!%s", filepath.Base(wb.Path()), sheetName)
	zap.S().Infof("Read %d part numbers from %s (%s layout)", len(drafts), source, layout.Name)
	return svc.Ingest(ctx, drafts, source)
}

func printSummary(w io.Writer, s *model.IngestSummary) {
	fmt.Fprintf(w, "batch %s: %d inserted, %d already present, partitions %v\n",
		s.BatchID, s.Inserted, len(s.AlreadyPresent), s.Partitions)
	for _, id := range s.AlreadyPresent {
		fmt.Fprintf(w, "  already present: %s\n", id)
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <partition>",
		Short: "List serials stored more than once in a partition, e.g. check 25",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition, err := parsePartitionArg(args[0])
			if err != nil {
				return err
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			dups, err := database.FindDuplicateSerials(db, partition)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(dups) == 0 {
				fmt.Fprintf(out, "partition %02d has no duplicated serials\n", partition)
				return nil
			}
			for _, d := range dups {
				rows := make([]string, len(d.Rows))
				for i, r := range d.Rows {
					rows[i] = strconv.FormatInt(r, 10)
				}
				fmt.Fprintf(out, "serial %05d repeated on rows: %s\n", d.Serial, strings.Join(rows, ", "))
			}
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <part number>",
		Short: "Show the stored rows of one part, e.g. search DL24-07698",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsers.ParseFullIdentifier(args[0], parsers.CurrentPartitionYear(time.Now()))
			if err != nil {
				return err
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := database.SearchRecords(db, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "partition %02d has no part with serial %05d\n", id.PartitionYear, id.Serial)
				return nil
			}
			for _, r := range records {
				fmt.Fprintln(out, r)
			}
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	var (
		dateText string
		outDir   string
		force    bool
		withPDF  bool
	)

	cmd := &cobra.Command{
		Use:   "report <part numbers...>",
		Short: "Generate an acceptance report",
		Long: `Builds the acceptance report for the given part numbers, e.g.

  saltbath report --date "2025 1 21" 24 07698 13456 25 19778

Every part number must be in the store; otherwise all missing ones are listed and
no report is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			reportDate, err := parsers.ParseReportDate(dateText, now)
			if err != nil {
				return err
			}
			ids, err := parsers.ParseIdentifiers(strings.Join(args, " "), parsers.CurrentPartitionYear(now))
			if err != nil {
				return err
			}

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			cfg := config.GetConfig()
			if outDir == "" {
				outDir = cfg.ReportDir
			}
			path, err := writeReport(cmd.Context(), db, ids, reportDate, outDir, force, withPDF)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateText, "date", "today", `report date: "today", "2025 1 21" or 2025-01-21`)
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing report file")
	cmd.Flags().BoolVar(&withPDF, "pdf", false, "also print the report to PDF")
	return cmd
}

// writeReport generates the report and writes it next to the other reports.
func writeReport(ctx context.Context, db *sqlx.DB, ids []model.Identifier, reportDate model.Date, outDir string, force, withPDF bool) (string, error) {
	cfg := config.GetConfig()
	path := filepath.Join(outDir, render.ReportFileName(reportDate, cfg.ReportTitle))
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("report %s already exists (use --force to overwrite)", path)
	}

	rep, err := report.Generate(db, ids)
	if err != nil {
		return "", err
	}
	if err := render.WriteReportXLSX(rep.Rows, path, cfg.ReportTemplatePath); err != nil {
		return "", err
	}

	if withPDF {
		pdfPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
		doc := render.RenderReportDocument(cfg.ReportTitle, reportDate, rep.Rows)
		if err := render.ExportReportPDF(ctx, doc, pdfPath); err != nil {
			zap.S().Errorf("PDF export failed: %v", err)
		} else {
			zap.S().Infof("PDF written to %s", pdfPath)
		}
	}
	return path, nil
}

func newImportLegacyCmd() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "import-legacy <NNdatabase.csv...>",
		Short: "Import flat partition CSV files from the spreadsheet era",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if encoding == "" {
				encoding = config.GetConfig().LegacyEncoding
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := ingest.NewService(db)
			for _, path := range args {
				summary, err := loader.ImportLegacyCSV(cmd.Context(), svc, path, encoding)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printSummary(cmd.OutOrStdout(), summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", "", "file encoding: utf-8, gb18030 or gbk (default from config)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <partition>",
		Short: "Write a partition table as a flat CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition, err := parsePartitionArg(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = loader.LegacyFileName(partition)
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("could not create %s: %w", out, err)
			}
			n, err := loader.ExportPartitionCSV(db, partition, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default NNdatabase.csv)")
	return cmd
}

func newBatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "List the ingestion log",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			batches, err := database.ListIngestBatches(db)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range batches {
				fmt.Fprintf(out, "%s  %s  %-30s inserted=%d skipped=%d\n", b.CreatedAt, b.BatchID, b.Source, b.Inserted, b.Skipped)
			}
			return nil
		},
	}
}

func parsePartitionArg(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 0 || p > database.MaxPartitionYear {
		return 0, fmt.Errorf("partition must be a number between 0 and %d, got %q", database.MaxPartitionYear, s)
	}
	return p, nil
}
