// Package export writes solved dispatch trajectories for reporting tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/nordbess/bessopt/core/model"
)

// WriteJSON writes the dispatch result to w in JSON format.
func WriteJSON(w io.Writer, res model.DispatchResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(res)
}

// WriteCSV writes the per-timestep trajectories to w as CSV.
func WriteCSV(w io.Writer, res model.DispatchResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"timestamp", "charge_kw", "discharge_kw", "grid_import_kw",
		"grid_export_kw", "curtailment_kw", "stored_energy_kwh", "degradation_pct",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for t := 0; t < res.Steps(); t++ {
		rec := []string{
			time.Unix(res.Timestamps[t], 0).UTC().Format(time.RFC3339),
			ftoa(res.ChargeKW[t]),
			ftoa(res.DischargeKW[t]),
			ftoa(res.GridImportKW[t]),
			ftoa(res.GridExportKW[t]),
			ftoa(res.CurtailmentKW[t]),
			ftoa(res.StoredEnergyKWh[t]),
			ftoa(res.DegradationPct[t]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
