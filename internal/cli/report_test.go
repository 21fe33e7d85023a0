package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/debtbook/internal/models"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := writeSummary(&buf, []models.PairBalance{
		{BorrowerName: "Alice", LenderName: "Bob", TotalUnpaid: 12.5, Count: 2},
		{BorrowerName: "Carol", LenderName: "Bob", TotalUnpaid: 3, Count: 1},
	})
	if err != nil {
		t.Fatalf("writeSummary failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "BORROWER") {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); len(fields) != 4 || fields[3] != "12.5" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSummary(&buf, nil); err != nil {
		t.Fatalf("writeSummary failed: %v", err)
	}
	if buf.String() != "Nothing is owed.\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	err := writeHistory(&buf, []models.History{
		{Action: models.ActionAddPerson, Timestamp: time.Now(), Details: "Added person: Alice"},
	})
	if err != nil {
		t.Fatalf("writeHistory failed: %v", err)
	}
	if !strings.Contains(buf.String(), "add_person") || !strings.Contains(buf.String(), "Added person: Alice") {
		t.Errorf("output = %q", buf.String())
	}
}
