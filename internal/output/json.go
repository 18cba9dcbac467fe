package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jenian/envcheck/internal/finding"
)

// JSONReport is the machine-readable output envelope. The result is embedded
// unchanged so scripts can read the same shape the library produces.
type JSONReport struct {
	File      string    `json:"file"`
	Timestamp time.Time `json:"timestamp"`
	*finding.Result
}

func formatJSON(w io.Writer, result *finding.Result, opts Options) error {
	report := JSONReport{
		File:      opts.Path,
		Timestamp: time.Now().UTC(),
		Result:    result,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
