package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nordbess/bessopt/core/model"
)

func sampleResult() model.DispatchResult {
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	return model.DispatchResult{
		Timestamps:      []int64{start.Unix(), start.Add(time.Hour).Unix()},
		ChargeKW:        []float64{5, 0},
		DischargeKW:     []float64{0, 4.5},
		GridImportKW:    []float64{13, 0},
		GridExportKW:    []float64{0, 0},
		CurtailmentKW:   []float64{0, 0},
		StoredEnergyKWh: []float64{14.5, 9.5},
		DegradationPct:  []float64{0.001, 0.002},
		EnergyCostNOK:   3.25,
		Solved:          true,
		Status:          "optimal",
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "timestamp,charge_kw,discharge_kw,grid_import_kw,grid_export_kw,curtailment_kw,stored_energy_kwh,degradation_pct" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "2023-03-01T00:00:00Z,5,0,13,0,0,14.5,0.001" {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded model.DispatchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded.Steps() != 2 || !decoded.Solved || decoded.EnergyCostNOK != 3.25 {
		t.Fatalf("round trip lost data: %+v", decoded)
	}
}
