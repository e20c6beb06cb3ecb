package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"saltbath/config"
	"saltbath/parsers"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler returns the current settings.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	}
}

// SaveConfigHandler validates and stores new settings.
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "Invalid request body.", http.StatusBadRequest)
			return
		}

		if err := validateFolderPath(newCfg.ReportDir); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateFilePath(newCfg.ReportTemplatePath); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateFilePath(newCfg.ArchivePath); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if newCfg.ListenAddr != "" {
			if _, _, err := net.SplitHostPort(newCfg.ListenAddr); err != nil {
				writeJSONError(w, "invalid listen address: "+newCfg.ListenAddr, http.StatusBadRequest)
				return
			}
		}
		if strings.ContainsAny(newCfg.ReportTitle, `/\`) {
			writeJSONError(w, "report title is used in file names and may not contain / or \\", http.StatusBadRequest)
			return
		}
		if err := parsers.CheckEncoding(newCfg.LegacyEncoding); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			zap.S().Errorf("Error saving config: %v", err)
			writeJSONError(w, "Failed to save settings.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Settings saved."})
	}
}

func validateFolderPath(path string) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("folder not found: " + path)
		}
		zap.S().Errorf("Error checking folder path: %v", err)
		return errors.New("could not check the folder path")
	}
	if !info.IsDir() {
		return errors.New("not a folder: " + path)
	}
	return nil
}

// validateFilePath checks that a configured workbook exists and is a file.
func validateFilePath(path string) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("file not found: " + path)
		}
		zap.S().Errorf("Error checking file path: %v", err)
		return errors.New("could not check the file path")
	}
	if info.IsDir() {
		return errors.New("not a file: " + path)
	}
	return nil
}
