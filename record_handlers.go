package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"saltbath/config"
	"saltbath/database"
	"saltbath/ingest"
	"saltbath/model"
	"saltbath/parsers"
	"saltbath/render"
	"saltbath/report"
	"saltbath/sheet"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorf("Error encoding JSON response: %v", err)
	}
}

// LookupRecordHandler answers /api/records/lookup?id=DL24-07698.
func LookupRecordHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("id")
		if raw == "" {
			writeJSONError(w, "id is required", http.StatusBadRequest)
			return
		}
		id, err := parsers.ParseFullIdentifier(raw, parsers.CurrentPartitionYear(time.Now()))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := database.SearchRecords(db, id)
		if err != nil {
			zap.S().Errorf("Error searching %s: %v", id, err)
			writeJSONError(w, "Failed to search records", http.StatusInternalServerError)
			return
		}
		if len(records) == 0 {
			writeJSONError(w, fmt.Sprintf("%s not found", id), http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{"identifier": id.String(), "records": records})
	}
}

func ListPartitionsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partitions, err := database.ListPartitions(db)
		if err != nil {
			writeJSONError(w, "Failed to list partitions", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"partitions": partitions})
	}
}

// CheckPartitionHandler answers /api/partitions/check?partition=25 with the
// serials stored more than once.
func CheckPartitionHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partition, err := parsePartitionArg(r.URL.Query().Get("partition"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		exists, err := database.PartitionTableExists(db, partition)
		if err != nil {
			writeJSONError(w, "Failed to check partition", http.StatusInternalServerError)
			return
		}
		if !exists {
			writeJSONError(w, fmt.Sprintf("partition %02d has no records", partition), http.StatusNotFound)
			return
		}
		dups, err := database.FindDuplicateSerials(db, partition)
		if err != nil {
			zap.S().Errorf("Error checking partition %02d: %v", partition, err)
			writeJSONError(w, "Failed to check partition", http.StatusInternalServerError)
			return
		}
		if dups == nil {
			dups = []model.DuplicateSerial{}
		}
		writeJSON(w, map[string]interface{}{"partition": partition, "duplicates": dups})
	}
}

// UploadWorkbookHandler ingests an uploaded workbook. Form fields: file, layout
// ("archive" or "entry"), sheet (optional), product (entry layout only).
func UploadWorkbookHandler(db *sqlx.DB) http.HandlerFunc {
	svc := ingest.NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		cfg := config.GetConfig()
		var layout sheet.Layout
		sheetName := r.FormValue("sheet")
		switch r.FormValue("layout") {
		case "archive":
			layout = sheet.ArchiveLayout()
			if sheetName == "" {
				sheetName = cfg.ArchiveSheet
			}
		case "", "entry":
			product := r.FormValue("product")
			if product == "" {
				product = cfg.ProductFilter
			}
			layout = sheet.EntryLayout(product)
			if sheetName == "" {
				sheetName = cfg.EntrySheet
			}
		default:
			writeJSONError(w, "layout must be archive or entry", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		wb, err := sheet.ReadWorkbook(file, header.Filename)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer wb.Close()

		summary, err := ingestWorkbook(r.Context(), svc, wb, sheetName, layout)
		if err != nil {
			var verr *model.ValidationError
			var perr *model.ParseError
			switch {
			case errors.As(err, &verr):
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(map[string]interface{}{"message": err.Error(), "problems": verr.Problems})
			case errors.As(err, &perr):
				writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				zap.S().Errorf("Failed to ingest %s: %v", header.Filename, err)
				writeJSONError(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, summary)
	}
}

func ListBatchesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := database.ListIngestBatches(db)
		if err != nil {
			writeJSONError(w, "Failed to list batches", http.StatusInternalServerError)
			return
		}
		writeJSON(w, batches)
	}
}

type reportRequest struct {
	IDs  string `json:"ids"`
	Date string `json:"date"`
}

// buildReportFromRequest answers errors itself and returns nil when it did.
func buildReportFromRequest(w http.ResponseWriter, db *sqlx.DB, req reportRequest) (*report.Report, model.Date) {
	now := time.Now()
	reportDate, err := parsers.ParseReportDate(req.Date, now)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, model.Date{}
	}
	ids, err := parsers.ParseIdentifiers(req.IDs, parsers.CurrentPartitionYear(now))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, model.Date{}
	}

	rep, err := report.Generate(db, ids)
	if err != nil {
		var miss *model.LookupMissError
		switch {
		case errors.As(err, &miss):
			missing := make([]string, len(miss.Missing))
			for i, id := range miss.Missing {
				missing[i] = id.String()
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"message": err.Error(), "missing": missing})
		case errors.Is(err, model.ErrEmptyRecords):
			writeJSONError(w, "no part numbers given", http.StatusBadRequest)
		default:
			zap.S().Errorf("Failed to generate report: %v", err)
			writeJSONError(w, "Failed to generate report", http.StatusInternalServerError)
		}
		return nil, model.Date{}
	}
	return rep, reportDate
}

// GenerateReportHandler takes {"ids": "24 07698 25 19778", "date": "2025 1 21"} and
// returns the report rows.
func GenerateReportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req reportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		rep, reportDate := buildReportFromRequest(w, db, req)
		if rep == nil {
			return
		}
		writeJSON(w, map[string]interface{}{
			"date":     reportDate,
			"fileName": render.ReportFileName(reportDate, config.GetConfig().ReportTitle),
			"rows":     rep.Rows,
		})
	}
}

// ViewReportHandler renders /api/report/view?ids=...&date=... as a printable page.
func ViewReportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rep, reportDate := buildReportFromRequest(w, db, reportRequest{IDs: q.Get("ids"), Date: q.Get("date")})
		if rep == nil {
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, render.RenderReportDocument(config.GetConfig().ReportTitle, reportDate, rep.Rows))
	}
}
