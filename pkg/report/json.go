package report

import (
	"encoding/json"
	"io"
)

// JSONOutput is the JSON structure written for one checked target.
type JSONOutput struct {
	Valid        bool      `json:"valid"`
	Target       string    `json:"target,omitempty"`
	Messages     []Message `json:"messages"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	Fixes        []string  `json:"fixes,omitempty"`
}

// BatchOutput is the JSON structure written for a run over many targets.
type BatchOutput struct {
	Valid        bool         `json:"valid"`
	Targets      []JSONOutput `json:"targets"`
	ErrorCount   int          `json:"error_count"`
	WarningCount int          `json:"warning_count"`
}

// JSON returns the JSON structure of the report labelled with target.
func (r *Report) JSON(target string) JSONOutput {
	out := JSONOutput{
		Valid:        r.IsValid(),
		Target:       target,
		Messages:     r.Messages,
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
	}
	if out.Messages == nil {
		out.Messages = []Message{}
	}
	return out
}

// WriteBatchJSON writes the per-target outputs with their totals to w.
func WriteBatchJSON(w io.Writer, targets []JSONOutput) error {
	out := BatchOutput{Targets: targets}
	if out.Targets == nil {
		out.Targets = []JSONOutput{}
	}
	for _, t := range targets {
		out.ErrorCount += t.ErrorCount
		out.WarningCount += t.WarningCount
	}
	out.Valid = out.ErrorCount == 0
	return encode(w, out)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
