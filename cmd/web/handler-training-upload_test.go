package main

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/xuri/excelize/v2"
)

func Test_application_trainingUpload_badInput(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startTestServer(t)
		client = server.Client()
	)

	t.Run("unreadable bytes are rejected", func(t *testing.T) {
		resp, err := client.UploadFile(ctx, "/api/training/upload", "file", "notes.txt",
			[]byte("not a workbook"), nil, nil)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
		}
	})

	t.Run("workbook without known sheets is flagged empty", func(t *testing.T) {
		f := excelize.NewFile()
		if err := f.SetCellValue("Sheet1", "A1", "quarterly budget"); err != nil {
			t.Fatalf("set cell: %v", err)
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			t.Fatalf("write workbook: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close workbook: %v", err)
		}

		var upload uploadResponse
		resp, err := client.UploadFile(ctx, "/api/training/upload", "file", "budget.xlsx",
			buf.Bytes(), nil, &upload)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		if !upload.Empty {
			t.Error("upload not flagged empty for a workbook without plan sheets")
		}
	})

	t.Run("missing file field is rejected", func(t *testing.T) {
		resp, err := client.SendJSON(ctx, http.MethodPost, "/api/training/upload", nil, nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})
}
