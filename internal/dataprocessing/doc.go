// Package dataprocessing turns raw WIP text exports into typed records and
// projects them into per-area daily snapshots.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: decodes one Windows-1252 pipe-delimited export into WipRecords
// 2. Consolidator: concatenates the records of several exports in order
// 3. Aggregator: joins records to the WBE→Area lookup and sums per area
//
// # Usage
//
//	res := dataprocessing.ParseExport("wip_01.txt", file)
//	unified := dataprocessing.Consolidate(exports)
//	agg := dataprocessing.NewSnapshotAggregator("").Aggregate(unified.Records, wbe, today)
//
// # Data Flow
//
//	TXT export → Parser → WipRecords → Consolidator → Aggregator → AreaSnapshots
//
// # Error Handling
//
// Nothing in this package fails a batch. Malformed lines are skipped, an
// unreadable export yields no records plus a warning diagnostic, and a
// non-numeric amount counts as zero.
package dataprocessing
