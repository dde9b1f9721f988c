package dataprocessing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Aggregation is the per-area snapshot of one as-of day plus the
// per-record audit detail it was computed from.
type Aggregation struct {
	AsOf      domain.Day
	Snapshots domain.HistorySeries // one row per area, sorted by area
	Detail    []domain.DetailRow   // one row per input record, input order
	Unmapped  int                  // records that fell back to the sentinel area
	Total     decimal.Decimal
}

// SnapshotAggregator projects WIP records through the WBE→Area lookup.
type SnapshotAggregator struct {
	unmappedArea string
}

// NewSnapshotAggregator creates an aggregator. An empty unmappedArea
// selects domain.UnmappedArea.
func NewSnapshotAggregator(unmappedArea string) *SnapshotAggregator {
	if strings.TrimSpace(unmappedArea) == "" {
		unmappedArea = domain.UnmappedArea
	}
	return &SnapshotAggregator{unmappedArea: unmappedArea}
}

// Aggregate computes the total value in process per area as of asOf. The
// totals are balances to date, not deltas against an earlier snapshot.
func (a *SnapshotAggregator) Aggregate(records []domain.WipRecord, wbeAreas *domain.LookupTable, asOf domain.Day) Aggregation {
	out := Aggregation{
		AsOf:   asOf,
		Detail: make([]domain.DetailRow, 0, len(records)),
		Total:  decimal.Zero,
	}
	totals := make(map[string]decimal.Decimal)

	for _, rec := range records {
		wbs := rec.WBS()
		area := a.areaFor(wbs, wbeAreas)
		if area == a.unmappedArea {
			out.Unmapped++
		}
		value := CoerceAmount(rec.ValueInProcess())

		out.Detail = append(out.Detail, domain.DetailRow{
			WBS:   wbs,
			Value: value,
			Date:  asOf,
			Area:  area,
		})
		totals[area] = totals[area].Add(value)
		out.Total = out.Total.Add(value)
	}

	areas := make([]string, 0, len(totals))
	for area := range totals {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	out.Snapshots = make(domain.HistorySeries, 0, len(areas))
	for _, area := range areas {
		out.Snapshots = append(out.Snapshots, domain.AreaSnapshot{
			Area:  area,
			Date:  asOf,
			Value: totals[area],
		})
	}
	return out
}

func (a *SnapshotAggregator) areaFor(wbs string, wbeAreas *domain.LookupTable) string {
	area, ok := wbeAreas.Attr(wbs, domain.ColumnArea)
	if !ok {
		return a.unmappedArea
	}
	area = strings.TrimSpace(area)
	if area == "" {
		return a.unmappedArea
	}
	return area
}
