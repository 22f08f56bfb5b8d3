package risk

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
)

// csvColumns is the fixed export column order
var csvColumns = []string{"risk_id", "description", "category", "likelihood", "impact", "mitigation"}

// CSV renders the register as one header line plus one row per entry
func (r *Report) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, e := range r.Entries {
		row := []string{
			strconv.Itoa(e.RiskID),
			e.Description,
			e.Category,
			e.Likelihood,
			e.Impact,
			e.Mitigation,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// JSON renders the full report including job reference and timestamp
func (r *Report) JSON() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}
