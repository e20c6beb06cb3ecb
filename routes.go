package main

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"saltbath/loader"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {
	mux.HandleFunc("/api/records/lookup", LookupRecordHandler(dbConn))

	mux.HandleFunc("/api/partitions", ListPartitionsHandler(dbConn))
	mux.HandleFunc("/api/partitions/check", CheckPartitionHandler(dbConn))
	mux.HandleFunc("/api/partitions/export", loader.ExportPartitionHandler(dbConn))

	mux.HandleFunc("/api/ingest/upload", UploadWorkbookHandler(dbConn))
	mux.HandleFunc("/api/ingest/legacy", loader.ImportLegacyHandler(dbConn))
	mux.HandleFunc("/api/batches", ListBatchesHandler(dbConn))

	mux.HandleFunc("/api/report", GenerateReportHandler(dbConn))
	mux.HandleFunc("/api/report/view", ViewReportHandler(dbConn))

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}
