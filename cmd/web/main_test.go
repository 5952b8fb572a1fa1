package main

import (
	"bytes"
	"testing"

	"github.com/summitchronicles/summit-tracker/internal/e2etest"
	"github.com/summitchronicles/summit-tracker/internal/testhelpers"
	"github.com/xuri/excelize/v2"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "SUMMIT_SQLITE_URL":
		return ":memory:", true
	case "SUMMIT_ADDR":
		return "localhost:0", true
	default:
		return "", false
	}
}

func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	return server
}

// buildTestWorkbook renders an xlsx with one strength day and two exercises.
func buildTestWorkbook(t *testing.T, date string) []byte {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Sunith's WP"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	cells := map[string]any{
		"B2": "Week 3: Base Building",
		"B4": date,
		"D4": "Monday",
		"F4": "Strength",
		"E5": 1,
		"F5": "Back Squat",
		"G5": 4,
		"H5": "6-8",
		"I5": "7-8",
		"E6": 2,
		"F6": "Weighted Step-Up",
		"G6": 3,
		"H6": "10",
		"I6": 6.5,
	}
	for ref, value := range cells {
		if err := f.SetCellValue("Sunith's WP", ref, value); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close workbook: %v", err)
	}
	return buf.Bytes()
}
