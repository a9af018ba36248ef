package analyzing

import (
	"errors"
	"fmt"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrNoData         = errors.New("no data available for report")
	ErrBuildReport    = errors.New("error building report")
	ErrWriteOutput    = errors.New("error writing report output")
	ErrSaveSnapshot   = errors.New("error saving report snapshot")
)

// ReportError é um erro com o nome do relatório envolvido
type ReportError struct {
	Err     error
	Report  string
	Details string
}

func (e *ReportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Err.Error(), e.Report, e.Details)
	}
	return fmt.Sprintf("%s [%s]", e.Err.Error(), e.Report)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

func NewReportError(err error, report string, details string) *ReportError {
	return &ReportError{Err: err, Report: report, Details: details}
}
