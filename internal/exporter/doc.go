// Package exporter renders workflow results as the artifacts users
// download: xlsx workbooks written through excelize stream writers, and
// CSV files with a UTF-8 BOM for Excel.
//
// Workbook writers target an io.Writer so the workflows can keep their
// artifacts in memory; CSVWriter also offers file output under the reports
// directory for the command line tools.
//
//	var buf bytes.Buffer
//	err := exporter.WriteUnified(&buf, consolidation.Records)
package exporter
