package history

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/dataprocessing"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/tabular"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Mode selects the history layout.
type Mode string

const (
	// ModeArea keeps one aggregated row per (Area, Date).
	ModeArea Mode = "area"
	// ModeFlat appends one row per WIP record, the older per-WBS layout.
	ModeFlat Mode = "flat"
)

// DefaultRowCeiling is the plain-history size at which a rollover happens.
const DefaultRowCeiling = 1_000_000

// ParseMode validates a configured mode name. Empty selects ModeArea.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeArea:
		return ModeArea, nil
	case ModeFlat:
		return ModeFlat, nil
	default:
		return "", fmt.Errorf("unknown history mode %q (want %q or %q)", s, ModeArea, ModeFlat)
	}
}

// Request carries the inputs of one history update.
type Request struct {
	// Current is the authoritative prior history; nil starts from scratch.
	Current *tabular.Table
	// Older is only used to seed carried-forward balances.
	Older *tabular.Table
	// Snapshot is today's aggregation; its AsOf is "today".
	Snapshot dataprocessing.Aggregation
}

// Outcome is the result of one history update.
type Outcome struct {
	Mode        Mode
	AsOf        domain.Day
	Series      domain.HistorySeries // ModeArea
	Flat        []domain.DetailRow   // ModeFlat
	Seeds       domain.HistorySeries
	RolledOver  bool
	Discarded   *tabular.Table // the history dropped by a rollover
	Diagnostics domain.Diagnostics
}

// Rows returns the number of rows in the resulting history.
func (o Outcome) Rows() int {
	if o.Mode == ModeFlat {
		return len(o.Flat)
	}
	return len(o.Series)
}

// Merger applies the history update policy.
type Merger struct {
	mode    Mode
	ceiling int
	logger  *slog.Logger
}

// NewMerger creates a merger. A ceiling of zero or less disables rollover.
func NewMerger(mode Mode, ceiling int, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = ModeArea
	}
	return &Merger{mode: mode, ceiling: ceiling, logger: logger}
}

// Mode returns the configured layout.
func (m *Merger) Mode() Mode { return m.mode }

// Update produces the next history from req. A history table whose columns
// cannot be recognised is an error and nothing is produced.
func (m *Merger) Update(req Request) (Outcome, error) {
	out := Outcome{Mode: m.mode, AsOf: req.Snapshot.AsOf}
	current := req.Current

	if m.shouldRollOver(current) {
		m.logger.Warn("History reached the row ceiling, rolling over",
			slog.String("source", current.Source),
			slog.Int("rows", current.Len()),
			slog.Int("ceiling", m.ceiling))
		out.Diagnostics.Warn(domain.CodeHistoryRollover,
			fmt.Sprintf("history has %d rows (ceiling %d): discarded, new history starts from today's data",
				current.Len(), m.ceiling), current.Source)
		out.RolledOver = true
		out.Discarded = current
		current = nil
	}

	if m.mode == ModeFlat {
		return m.updateFlat(out, current, req)
	}
	return m.updateArea(out, current, req)
}

func (m *Merger) updateArea(out Outcome, current *tabular.Table, req Request) (Outcome, error) {
	prior, diags, err := Normalize(current)
	if err != nil {
		return out, fmt.Errorf("current history: %w", err)
	}
	out.Diagnostics = append(out.Diagnostics, diags...)

	older, diags, err := Normalize(req.Older)
	if err != nil {
		return out, fmt.Errorf("older history: %w", err)
	}
	out.Diagnostics = append(out.Diagnostics, diags...)

	today := req.Snapshot.AsOf
	if n := countDay(prior, today); n > 0 {
		out.Diagnostics.Info(domain.CodeReplacedToday,
			fmt.Sprintf("%d rows dated %s replaced by today's run", n, today), "")
	}

	out.Series, out.Seeds = Merge(prior, older, req.Snapshot.Snapshots, today)
	if len(out.Seeds) > 0 {
		out.Diagnostics.Info(domain.CodeSeeded,
			fmt.Sprintf("%d areas seeded on %s from the older history", len(out.Seeds), out.Seeds[0].Date), "")
	}

	m.logger.Info("History merged",
		slog.String("mode", string(m.mode)),
		slog.String("as_of", today.String()),
		slog.Int("prior_rows", len(prior)),
		slog.Int("seed_rows", len(out.Seeds)),
		slog.Int("rows", len(out.Series)))
	return out, nil
}

func (m *Merger) updateFlat(out Outcome, current *tabular.Table, req Request) (Outcome, error) {
	existing, diags, err := NormalizeFlat(current)
	if err != nil {
		return out, fmt.Errorf("current history: %w", err)
	}
	out.Diagnostics = append(out.Diagnostics, diags...)

	today := req.Snapshot.AsOf
	var replaced int
	out.Flat, replaced = MergeFlat(existing, req.Snapshot.Detail, today)
	if replaced > 0 {
		out.Diagnostics.Info(domain.CodeReplacedToday,
			fmt.Sprintf("%d rows dated %s replaced by today's run", replaced, today), "")
	}

	m.logger.Info("History merged",
		slog.String("mode", string(m.mode)),
		slog.String("as_of", today.String()),
		slog.Int("prior_rows", len(existing)),
		slog.Int("rows", len(out.Flat)))
	return out, nil
}

// shouldRollOver reports whether t is a plain history at or over the
// ceiling. Canonical area series are aggregated and never rolled over.
func (m *Merger) shouldRollOver(t *tabular.Table) bool {
	if t == nil || m.ceiling <= 0 || t.Len() < m.ceiling {
		return false
	}
	if m.mode == ModeFlat {
		return true
	}
	_, err := t.Require(domain.ColumnArea, domain.ColumnDataAggiornamento, domain.ColumnValore)
	return err != nil
}

func countDay(s domain.HistorySeries, day domain.Day) int {
	n := 0
	for _, row := range s {
		if row.Date.Equal(day) {
			n++
		}
	}
	return n
}
