package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func uploadRequest(t *testing.T, csv string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "intake.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(csv)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestHandler_Upload(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())

	req, rec := uploadRequest(t, sampleCSV)
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "intake.csv" || got.RecordCount != 3 {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestHandler_UploadMalformedCSV(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())

	req, rec := uploadRequest(t, "patient_id,total_risk_score\nP1,high\n")
	c := e.NewContext(req, rec)

	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed CSV, got %v", err)
	}
}

func TestHandler_UploadMissingFile(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file, got %v", err)
	}
}

func TestHandler_ListRecordsFiltered(t *testing.T) {
	e := echo.New()
	svc := newTestService()
	h := NewHandler(svc)
	d := mustIngest(t, svc, "intake.csv", sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+d.ID.String()+"/records?risk=high", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.ListRecords(c); err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data  []LabeledRecord `json:"data"`
		Total int             `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Data[0].PatientID != "P1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandler_ListRecordsBadSelector(t *testing.T) {
	e := echo.New()
	svc := newTestService()
	h := NewHandler(svc)
	d := mustIngest(t, svc, "intake.csv", sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+d.ID.String()+"/records?risk=medium", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	err := h.ListRecords(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad selector, got %v", err)
	}
}

func TestHandler_ListRecordsUnknownDataset(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/records", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := h.ListRecords(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown dataset, got %v", err)
	}
}

func TestHandler_ExportRecords(t *testing.T) {
	e := echo.New()
	svc := newTestService()
	h := NewHandler(svc)
	d := mustIngest(t, svc, "intake.csv", sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+d.ID.String()+"/records/export", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.ExportRecords(c); err != nil {
		t.Fatalf("ExportRecords: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/csv" {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "risk_label") {
		t.Error("expected risk_label column in export")
	}
}

func TestHandler_DeleteDataset(t *testing.T) {
	e := echo.New()
	svc := newTestService()
	h := NewHandler(svc)
	d := mustIngest(t, svc, "intake.csv", sampleCSV)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/"+d.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.DeleteDataset(c); err != nil {
		t.Fatalf("DeleteDataset: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, err := svc.Get(context.Background(), d.ID); err == nil {
		t.Error("expected dataset to be removed")
	}
}
