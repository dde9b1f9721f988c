// Package shared holds helpers used across the reconciliation packages that
// belong to no single layer.
//
// The testutil subpackage provides captured-log assertions and builders for
// the fixtures the workflows consume: pipe-delimited WIP exports and xlsx
// workbooks assembled in memory with excelize.
package shared
