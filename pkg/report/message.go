package report

import "fmt"

// Severity levels for check findings.
type Severity string

const (
	Error   Severity = "ERROR"
	Warning Severity = "WARNING"
)

// Message represents a single check finding.
type Message struct {
	Severity Severity `json:"severity"`
	CheckID  string   `json:"check_id"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
}

func (m Message) String() string {
	if m.Location != "" {
		return fmt.Sprintf("%s(%s): %s [%s]", m.Severity, m.CheckID, m.Message, m.Location)
	}
	return fmt.Sprintf("%s(%s): %s", m.Severity, m.CheckID, m.Message)
}

// Result is an additive (errors, warnings) pair.
type Result struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Add returns the sum of two results.
func (r Result) Add(o Result) Result {
	return Result{Errors: r.Errors + o.Errors, Warnings: r.Warnings + o.Warnings}
}

// Report collects all messages from a check run.
type Report struct {
	Messages []Message `json:"messages"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends a message to the report.
func (r *Report) Add(sev Severity, checkID string, msg string) {
	r.Messages = append(r.Messages, Message{
		Severity: sev,
		CheckID:  checkID,
		Message:  msg,
	})
}

// AddWithLocation appends a message with a location to the report.
func (r *Report) AddWithLocation(sev Severity, checkID string, msg string, location string) {
	r.Messages = append(r.Messages, Message{
		Severity: sev,
		CheckID:  checkID,
		Message:  msg,
		Location: location,
	})
}

// ErrorCount returns the number of ERROR messages.
func (r *Report) ErrorCount() int {
	n := 0
	for _, m := range r.Messages {
		if m.Severity == Error {
			n++
		}
	}
	return n
}

// WarningCount returns the number of WARNING messages.
func (r *Report) WarningCount() int {
	n := 0
	for _, m := range r.Messages {
		if m.Severity == Warning {
			n++
		}
	}
	return n
}

// Result returns the (errors, warnings) totals of the report.
func (r *Report) Result() Result {
	return Result{Errors: r.ErrorCount(), Warnings: r.WarningCount()}
}

// IsValid returns true if there are no ERROR messages.
func (r *Report) IsValid() bool {
	return r.ErrorCount() == 0
}

// ByCheck returns the messages emitted by the given check.
func (r *Report) ByCheck(checkID string) []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.CheckID == checkID {
			out = append(out, m)
		}
	}
	return out
}
