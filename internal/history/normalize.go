package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/dataprocessing"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/tabular"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Column name candidates for non-canonical history tables, matched
// case-insensitively in order.
var (
	areaCandidates  = []string{"area"}
	dateCandidates  = []string{"dataaggiornamento", "data aggiornamento", "data", "date", "giorno"}
	valueCandidates = []string{"valore", "valore in lavorazione", "value", "importo", "totale"}
)

// Schema locates the area, date and value columns of a history table.
type Schema struct {
	Area, Date, Value int
	// Canonical is set when the table already has the exact snapshot
	// columns Area, DataAggiornamento and Valore.
	Canonical bool
}

// DetectSchema finds the history columns of t. It fails with a
// *tabular.SchemaError naming every requirement it could not satisfy.
func DetectSchema(t *tabular.Table) (Schema, error) {
	if idx, err := t.Require(domain.ColumnArea, domain.ColumnDataAggiornamento, domain.ColumnValore); err == nil {
		return Schema{Area: idx[0], Date: idx[1], Value: idx[2], Canonical: true}, nil
	}

	s := Schema{
		Area:  t.Find(areaCandidates...),
		Date:  t.Find(dateCandidates...),
		Value: t.Find(valueCandidates...),
	}
	var missing []string
	if s.Area < 0 {
		missing = append(missing, "area ("+strings.Join(areaCandidates, "|")+")")
	}
	if s.Date < 0 {
		missing = append(missing, "date ("+strings.Join(dateCandidates, "|")+")")
	}
	if s.Value < 0 {
		missing = append(missing, "value ("+strings.Join(valueCandidates, "|")+")")
	}
	if len(missing) > 0 {
		return Schema{}, &tabular.SchemaError{Source: t.Source, Missing: missing}
	}
	return s, nil
}

// Normalize converts t into a snapshot series. Canonical tables are taken
// row for row; any other layout is collapsed to one row per (Area, Date)
// by summing. Rows with a blank area or an unreadable date are dropped and
// reported.
func Normalize(t *tabular.Table) (domain.HistorySeries, domain.Diagnostics, error) {
	var diags domain.Diagnostics
	if t == nil {
		return nil, diags, nil
	}
	schema, err := DetectSchema(t)
	if err != nil {
		return nil, diags, err
	}

	series := make(domain.HistorySeries, 0, len(t.Rows))
	badDates, blankAreas := 0, 0
	for _, row := range t.Rows {
		area := tabular.Cell(row, schema.Area)
		if area == "" {
			blankAreas++
			continue
		}
		day, ok := ParseDate(tabular.Cell(row, schema.Date))
		if !ok {
			badDates++
			continue
		}
		series = append(series, domain.AreaSnapshot{
			Area:  area,
			Date:  day,
			Value: dataprocessing.CoerceAmount(tabular.Cell(row, schema.Value)),
		})
	}

	if badDates > 0 {
		diags.Warn(domain.CodeUnparsableDates,
			fmt.Sprintf("%d rows dropped: date not recognised", badDates), t.Source)
	}
	if blankAreas > 0 {
		diags.Warn(domain.CodeRowsDropped,
			fmt.Sprintf("%d rows dropped: blank area", blankAreas), t.Source)
	}

	if !schema.Canonical {
		series = collapse(series)
	}
	return series, diags, nil
}

// collapse sums rows sharing (Area, Date) and returns them sorted.
func collapse(rows domain.HistorySeries) domain.HistorySeries {
	type key struct {
		area string
		day  domain.Day
	}
	sums := make(map[key]decimal.Decimal, len(rows))
	for _, r := range rows {
		k := key{r.Area, r.Date}
		sums[k] = sums[k].Add(r.Value)
	}
	out := make(domain.HistorySeries, 0, len(sums))
	for k, v := range sums {
		out = append(out, domain.AreaSnapshot{Area: k.area, Date: k.day, Value: v})
	}
	sortSeries(out)
	return out
}

// dateLayouts are tried in order on textual dates. Day-first forms follow
// the Italian locale of the exports.
var dateLayouts = []string{
	domain.DayLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// ParseDate reads a calendar day from a cell: an Excel serial number (as
// raw cell values carry dates) or one of the textual layouts.
func ParseDate(raw string) (domain.Day, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Day{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return domain.Day{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return domain.Day{}, false
		}
		return domain.DayOf(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return domain.DayOf(t), true
		}
	}
	return domain.Day{}, false
}

func sortSeries(s domain.HistorySeries) {
	sort.SliceStable(s, func(i, j int) bool {
		if c := s[i].Date.Compare(s[j].Date); c != 0 {
			return c < 0
		}
		return s[i].Area < s[j].Area
	})
}
