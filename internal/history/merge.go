package history

import (
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Merge returns the next history series. Rows of current dated today are
// replaced by batch; when older is non-empty its closing balance per area
// is carried forward as seed rows. The result holds at most one row per
// (Area, Date) and is sorted by (Date, Area). The inputs are not modified.
func Merge(current, older, batch domain.HistorySeries, today domain.Day) (series, seeds domain.HistorySeries) {
	kept := make(domain.HistorySeries, 0, len(current))
	for _, row := range current {
		if !row.Date.Equal(today) {
			kept = append(kept, row)
		}
	}

	seeds = Seeds(older, seedDay(kept, today))

	all := make(domain.HistorySeries, 0, len(seeds)+len(kept)+len(batch))
	all = append(all, seeds...)
	all = append(all, kept...)
	all = append(all, batch...)

	series = Dedup(all)
	sortSeries(series)
	return series, seeds
}

// seedDay is the day before the earliest row of current, or the day before
// today when current is empty.
func seedDay(current domain.HistorySeries, today domain.Day) domain.Day {
	earliest := today
	for _, row := range current {
		if row.Date.Before(earliest) {
			earliest = row.Date
		}
	}
	return earliest.AddDays(-1)
}

// Seeds takes the chronologically last row of every area in older and
// re-dates it to day. Among rows sharing an area's last date the later
// one wins. The result is sorted by area.
func Seeds(older domain.HistorySeries, day domain.Day) domain.HistorySeries {
	if len(older) == 0 {
		return nil
	}
	last := make(map[string]domain.AreaSnapshot)
	for _, row := range older {
		prev, ok := last[row.Area]
		if !ok || !row.Date.Before(prev.Date) {
			last[row.Area] = row
		}
	}

	seeds := make(domain.HistorySeries, 0, len(last))
	for _, row := range last {
		row.Date = day
		seeds = append(seeds, row)
	}
	sortSeries(seeds)
	return seeds
}

// Dedup keeps the last occurrence of every (Area, Date) pair. Surviving
// rows keep the position of their first occurrence.
func Dedup(rows domain.HistorySeries) domain.HistorySeries {
	type key struct {
		area string
		day  domain.Day
	}
	pos := make(map[key]int, len(rows))
	out := make(domain.HistorySeries, 0, len(rows))
	for _, row := range rows {
		k := key{row.Area, row.Date}
		if i, ok := pos[k]; ok {
			out[i] = row
			continue
		}
		pos[k] = len(out)
		out = append(out, row)
	}
	return out
}
