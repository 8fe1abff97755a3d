package services

import "errors"

// ErrSheetsDisabled is returned by the sheets export when no spreadsheet
// is configured.
var ErrSheetsDisabled = errors.New("sheets export is not configured")
