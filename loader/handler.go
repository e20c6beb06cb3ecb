package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"saltbath/config"
	"saltbath/database"
	"saltbath/ingest"
	"saltbath/model"
)

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ImportLegacyHandler accepts one or more legacy partition CSV files as a
// multipart upload under the "file" field. Each file is its own batch.
func ImportLegacyHandler(db *sqlx.DB) http.HandlerFunc {
	svc := ingest.NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			respondJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		encoding := r.FormValue("encoding")
		if encoding == "" {
			encoding = config.GetConfig().LegacyEncoding
		}

		var results []map[string]interface{}
		for _, fileHeader := range r.MultipartForm.File["file"] {
			result := map[string]interface{}{"filename": fileHeader.Filename}

			file, err := fileHeader.Open()
			if err != nil {
				result["error"] = fmt.Sprintf("Failed to open file: %v", err)
				results = append(results, result)
				continue
			}
			summary, err := ImportLegacyStream(r.Context(), svc, file, fileHeader.Filename, encoding)
			file.Close()
			if err != nil {
				zap.S().Errorf("Failed to import %s: %v", fileHeader.Filename, err)
				result["error"] = err.Error()
				var verr *model.ValidationError
				if errors.As(err, &verr) {
					result["problems"] = verr.Problems
				}
				results = append(results, result)
				continue
			}
			result["summary"] = summary
			results = append(results, result)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	}
}

// ExportPartitionHandler streams /api/partitions/export?partition=NN as CSV.
func ExportPartitionHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partition, err := strconv.Atoi(r.URL.Query().Get("partition"))
		if err != nil || partition < 0 || partition > database.MaxPartitionYear {
			respondJSONError(w, "partition must be a number between 0 and 49", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, LegacyFileName(partition)))
		if _, err := ExportPartitionCSV(db, partition, w); err != nil {
			zap.S().Errorf("Failed to export partition %d: %v", partition, err)
			http.Error(w, "Failed to export partition", http.StatusInternalServerError)
		}
	}
}
