package sheets

import "errors"

// Column names of the candidate table. The header row defines the
// name-to-index mapping; writers look columns up by name.
const (
	ColCode        = "CODE"
	ColLink        = "link"
	ColCompliance  = "COMPLIENCE"
	ColProtocol    = "PROTOCOL"
	ColReport      = "REPORT"
	ColFinalRating = "FINAL-RATING"
	ColVacancyText = "VACATION-TEXT"
	ColSMSSent     = "SMS_SENT"
	ColPhone       = "resume-personal-phone"
	ColName        = "resume-personal-name"
)

// ResumeColumns are the scraped resume sections, one column per block.
var ResumeColumns = []string{
	"resume-personal-name",
	"resume-personal-gender",
	"resume-personal-age",
	"resume-personal-birthday",
	"resume-personal-address",
	"resume-update-date",
	"resume-serp_resume-item-content",
	"resume-specializations",
	"resume-experience-block",
	"skills-table",
	"resume-languages-block",
	"resume-about-block",
	"resume-recommendations-block",
	"resume-block-portfolio",
	"resume-education-block",
	"resume-education-courses-block",
	"resume-education-tests-block",
	"resume-block-certificate",
	"resume-additional-info-block",
}

// CandidateHeaders is the full header row of the candidate worksheet.
func CandidateHeaders() []string {
	headers := []string{ColCode, ColLink}
	headers = append(headers, ResumeColumns...)
	return append(headers, ColPhone, ColCompliance, ColProtocol, ColReport, ColFinalRating, ColVacancyText, ColSMSSent)
}

var (
	ErrRowNotFound    = errors.New("row not found")
	ErrColumnNotFound = errors.New("column not found")
)

// RowStore is the spreadsheet-shaped candidate table. Rows are addressed
// by their 1-based number; row 1 is the header.
type RowStore interface {
	Headers() ([]string, error)
	// FindRowByColumn returns the 1-based row number of the first data
	// row whose cell in the named column equals value.
	FindRowByColumn(column, value string) (int, error)
	RowValues(row int) ([]string, error)
	Cell(row int, column string) (string, error)
	UpdateCell(row int, column, value string) error
	AppendRow(values []string) error
	// RowCount reports the number of rows including the header.
	RowCount() (int, error)
}
