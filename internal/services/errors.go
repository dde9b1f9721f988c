package services

import (
	"errors"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/tabular"
)

// Workflow errors
var (
	// ErrMissingInput is returned when a required input file was not supplied.
	ErrMissingInput = errors.New("required input missing")
	// ErrWrongExportCount is returned when a merge batch does not have the
	// configured number of exports.
	ErrWrongExportCount = errors.New("wrong number of exports")
	// ErrSchemaUnrecognized is returned when a spreadsheet lacks the columns
	// a workflow needs.
	ErrSchemaUnrecognized = tabular.ErrSchemaUnrecognized
	// ErrUnreadableWorkbook is returned for uploads that are not spreadsheets.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
)

// Artifact errors
var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidBatchID   = errors.New("invalid batch id")
)
