package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"saltbath/config"
	"saltbath/database"
	"saltbath/ingest"
	"saltbath/loader"
	"saltbath/model"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlx.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, loader.InitDatabase(db))
	t.Cleanup(func() { db.Close() })

	mux := http.NewServeMux()
	SetupRoutes(mux, db)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, db
}

func seed(t *testing.T, db *sqlx.DB, records ...model.Record) {
	t.Helper()
	_, err := ingest.NewService(db).Write(context.Background(), model.Batch{Source: "seed", Records: records})
	require.NoError(t, err)
}

func part(partition, serial, heat int) model.Record {
	return model.Record{
		Date:           model.Date{Year: 2024, Month: 5, Day: 7},
		HeatNumber:     heat,
		CompoundLayer:  "0.010",
		DiffusionDepth: "0.30",
		PartitionYear:  partition,
		Serial:         serial,
	}
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLookupRecordHandler(t *testing.T) {
	srv, db := newTestServer(t)
	seed(t, db, part(24, 7698, 12))

	resp, err := http.Get(srv.URL + "/api/records/lookup?id=DL24-07698")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "DL24-07698", body["identifier"])
	records := body["records"].([]interface{})
	require.Len(t, records, 1)
	assert.EqualValues(t, 12, records[0].(map[string]interface{})["heatNumber"])

	resp, err = http.Get(srv.URL + "/api/records/lookup?id=DL24-00001")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/records/lookup")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func postReport(t *testing.T, srv *httptest.Server, ids, date string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"ids": ids, "date": date})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/report", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestGenerateReportHandler(t *testing.T) {
	srv, db := newTestServer(t)
	seed(t, db, part(24, 7698, 12), part(24, 7699, 12), part(25, 19778, 3))

	resp := postReport(t, srv, "24 07699 07698 25 19778", "2025 1 21")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)

	rows := body["rows"].([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "003", first["heatNumber"])
	second := rows[1].(map[string]interface{})
	assert.EqualValues(t, 2, second["count"])
	assert.Equal(t, "DL24-07698  DL24-07699", second["labels"])
	assert.True(t, strings.HasPrefix(body["fileName"].(string), "2025_1_21_"))
}

func TestGenerateReportHandler_CollectsAllMisses(t *testing.T) {
	srv, db := newTestServer(t)
	seed(t, db, part(24, 7698, 12))

	resp := postReport(t, srv, "24 07698 00001 25 00002", "today")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, []interface{}{"DL24-00001", "DL25-00002"}, body["missing"])
}

func TestGenerateReportHandler_BadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postReport(t, srv, "24 100000", "today")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postReport(t, srv, "24 1", "2025 2 30")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestViewReportHandler(t *testing.T) {
	srv, db := newTestServer(t)
	seed(t, db, part(24, 7698, 12))

	resp, err := http.Get(srv.URL + "/api/report/view?ids=24+07698&date=2025-01-21")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestCheckPartitionHandler(t *testing.T) {
	srv, db := newTestServer(t)
	seed(t, db, part(24, 7698, 12), part(24, 7698, 13), part(24, 7700, 12))

	resp, err := http.Get(srv.URL + "/api/partitions/check?partition=24")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	dups := body["duplicates"].([]interface{})
	require.Len(t, dups, 1)
	dup := dups[0].(map[string]interface{})
	assert.EqualValues(t, 7698, dup["serial"])
	assert.Equal(t, []interface{}{float64(2), float64(3)}, dup["rows"])

	resp, err = http.Get(srv.URL + "/api/partitions/check?partition=30")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/partitions/check?partition=99")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func archiveWorkbook(t *testing.T, idents string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("111")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("111", "A5", 45678))
	require.NoError(t, f.SetCellValue("111", "B5", 7))
	require.NoError(t, f.SetCellStr("111", "E5", "0.012"))
	require.NoError(t, f.SetCellStr("111", "F5", "0.35"))
	require.NoError(t, f.SetCellStr("111", "I5", idents))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, srv *httptest.Server, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("layout", "archive"))
	require.NoError(t, mw.WriteField("sheet", "111"))
	fw, err := mw.CreateFormFile("file", "total.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/ingest/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func TestUploadWorkbookHandler(t *testing.T) {
	srv, db := newTestServer(t)

	resp := uploadWorkbook(t, srv, archiveWorkbook(t, "DL25-00001, 00002"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.EqualValues(t, 2, body["inserted"])

	records, err := database.GetPartitionRecords(db, 25)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.Date{Year: 2025, Month: 1, Day: 21}, records[0].Date)
	assert.Equal(t, "0.012", records[1].CompoundLayer)

	resp = uploadWorkbook(t, srv, archiveWorkbook(t, "25 00001 00002"))
	body = decode(t, resp)
	assert.EqualValues(t, 0, body["inserted"])
	assert.Len(t, body["alreadyPresent"], 2)
}

func TestConfigHandler_Get(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/config")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Contains(t, body, "productFilter")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/config", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func postConfig(t *testing.T, srv *httptest.Server, cfg config.Config) *http.Response {
	t.Helper()
	payload, err := json.Marshal(cfg)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/config", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestConfigHandler_SaveValidatesFields(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()

	original := config.GetConfig()
	config.SetConfigPath(filepath.Join(dir, "saltbath_config.json"))
	t.Cleanup(func() {
		require.NoError(t, config.SaveConfig(original))
		config.SetConfigPath("./saltbath_config.json")
	})

	template := filepath.Join(dir, "model.xlsx")
	require.NoError(t, os.WriteFile(template, []byte("x"), 0644))

	valid := config.Defaults()
	valid.ReportTemplatePath = template
	valid.ArchivePath = ""
	valid.ReportDir = dir

	bad := []func(c *config.Config){
		func(c *config.Config) { c.ReportTemplatePath = filepath.Join(dir, "missing.xlsx") },
		func(c *config.Config) { c.ReportTemplatePath = dir },
		func(c *config.Config) { c.ArchivePath = filepath.Join(dir, "total.xlsx") },
		func(c *config.Config) { c.ReportDir = template },
		func(c *config.Config) { c.ListenAddr = "8080" },
		func(c *config.Config) { c.ReportTitle = "a/b" },
		func(c *config.Config) { c.LegacyEncoding = "latin1" },
	}
	for i, mutate := range bad {
		cfg := valid
		mutate(&cfg)
		resp := postConfig(t, srv, cfg)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "case %d", i)
		resp.Body.Close()
	}

	resp := postConfig(t, srv, valid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, template, config.GetConfig().ReportTemplatePath)
}
