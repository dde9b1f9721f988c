// Package tabular reads the spreadsheets the reconciliation workflows take
// as input (lookup tables, the unified WIP workbook, history workbooks)
// into header-addressed in-memory tables, and detects their schemas.
//
// All reads go through excelize with raw cell values, so dates arrive as
// Excel serial numbers and amounts unformatted; interpretation is left to
// the caller.
package tabular
