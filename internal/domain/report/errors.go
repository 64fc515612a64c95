package report

import (
	"errors"
	"fmt"
)

var ErrReportUnavailable = errors.New("leave report is temporarily unavailable")

// QueryError records which aggregate failed while building a report.
type QueryError struct {
	Report string
	Step   string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s report: %s: %v", e.Report, e.Step, e.Err)
}

func (e *QueryError) Unwrap() []error { return []error{ErrReportUnavailable, e.Err} }
