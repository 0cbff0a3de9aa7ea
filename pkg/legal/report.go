package legal

import "time"

// ProcessingReport records the outcome of one batch stage: item counts,
// errors and warnings, and a free-form statistics snapshot.
type ProcessingReport struct {
	Operation      string         `json:"operation_type"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        *time.Time     `json:"end_time,omitempty"`
	Status         Status         `json:"status"`
	TotalItems     int            `json:"total_items"`
	ProcessedItems int            `json:"processed_items"`
	FailedItems    int            `json:"failed_items"`
	Errors         []string       `json:"errors"`
	Warnings       []string       `json:"warnings"`
	Statistics     map[string]any `json:"statistics"`
}

// NewProcessingReport starts a report for the named operation.
func NewProcessingReport(operation string, totalItems int) *ProcessingReport {
	return &ProcessingReport{
		Operation:  operation,
		StartTime:  time.Now(),
		Status:     StatusProcessing,
		TotalItems: totalItems,
		Statistics: make(map[string]any),
	}
}

// Finish stamps the end time and final status.
func (r *ProcessingReport) Finish(status Status) {
	now := time.Now()
	r.EndTime = &now
	r.Status = status
}

// AddError records a per-item error and increments the failure count.
func (r *ProcessingReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.FailedItems++
}

// AddWarning records a non-fatal warning.
func (r *ProcessingReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// ElapsedSeconds returns the stage duration, or 0 if still running.
func (r *ProcessingReport) ElapsedSeconds() float64 {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime).Seconds()
}

// SuccessRate returns the processed percentage, 0 for an empty batch.
func (r *ProcessingReport) SuccessRate() float64 {
	if r.TotalItems == 0 {
		return 0
	}
	return float64(r.ProcessedItems) / float64(r.TotalItems) * 100.0
}
