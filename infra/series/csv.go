// Package series loads pre-aligned input time series for the optimizer. The
// data must already share one timestamp grid; no resampling or interpolation
// happens here or anywhere downstream.
package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/nordbess/bessopt/core/model"
)

// ReadCSV parses a four-column CSV (timestamp, production_kw,
// consumption_kw, spot_price_nok) with a header row into a TimeSeriesInput.
// Timestamps are RFC 3339. The step duration is derived from the first two
// rows and validated against the whole grid.
func ReadCSV(r io.Reader) (model.TimeSeriesInput, error) {
	var ts model.TimeSeriesInput
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4

	if _, err := cr.Read(); err != nil {
		return ts, fmt.Errorf("read header: %w", err)
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ts, fmt.Errorf("line %d: %w", line, err)
		}
		stamp, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return ts, fmt.Errorf("line %d: timestamp: %w", line, err)
		}
		vals := make([]float64, 3)
		for i := 0; i < 3; i++ {
			vals[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return ts, fmt.Errorf("line %d column %d: %w", line, i+2, err)
			}
		}
		ts.Timestamps = append(ts.Timestamps, stamp)
		ts.ProductionKW = append(ts.ProductionKW, vals[0])
		ts.ConsumptionKW = append(ts.ConsumptionKW, vals[1])
		ts.SpotPriceNOK = append(ts.SpotPriceNOK, vals[2])
	}
	if len(ts.Timestamps) < 2 {
		return ts, fmt.Errorf("need at least two rows to derive the timestep")
	}
	ts.StepHours = ts.Timestamps[1].Sub(ts.Timestamps[0]).Hours()
	if err := ts.Validate(); err != nil {
		return ts, err
	}
	return ts, nil
}

// LoadCSV reads a series from a file path.
func LoadCSV(path string) (model.TimeSeriesInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TimeSeriesInput{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}
