package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NumColumns is the width of the fixed WIP export schema.
const NumColumns = 24

// Column indexes into a WipRecord.
const (
	ColDivisione = iota
	ColDescrDivisione
	ColImpresa
	ColDescrImpresa
	ColMateriale
	ColDescrMateriale
	ColCodiceWBS
	ColStatoWBS
	ColAnno
	ColUM
	ColQuantitaLavorazione
	ColValoreLavorazione
	ColQuantitaRLAcq
	ColValoreRLAcq
	ColQuantitaRLConsunt
	ColValoreRLConsunt
	ColQuantitaRientro
	ColValoreRientro
	ColValuta
	ColNumeroProposta
	ColTipoProposta
	ColCup
	ColCig
	ColRaggrWBE
)

// WipColumns is the fixed, ordered column list of the WIP export.
// The order never changes and is never inferred from a header line.
var WipColumns = [NumColumns]string{
	"Divisione",
	"Descr.Divisione",
	"Impresa",
	"Descr.Impresa",
	"Materiale",
	"Descr.Materiale",
	"Codice WBS",
	"Stato WBS",
	"Anno",
	"UM",
	"Quantità in lavorazione",
	"Valore in lavorazione",
	"Quantità RL Acq./Val.",
	"Valore RL Acq./Val.",
	"Quantità RL consunt.",
	"Valore RL consunt.",
	"Quantità Rientro da Lav.",
	"Valore Rientro da Lav.",
	"Valuta",
	"Numero proposta",
	"Tipo proposta",
	"Cup",
	"Cig",
	"Raggr.WBE",
}

// Well-known column names used by the lookup and history workbooks.
const (
	ColumnWBE               = "WBE"
	ColumnArea              = "Area"
	ColumnMateriale         = "Materiale"
	ColumnCodiceWBS         = "Codice WBS"
	ColumnValoreLavorazione = "Valore in lavorazione"
	ColumnDataAggiornamento = "DataAggiornamento"
	ColumnValore            = "Valore"
)

// UnmappedArea is assigned to records whose WBS code has no WBE lookup entry.
const UnmappedArea = "unmapped"

// WipRecord is one accepted row of a WIP export. The array type guarantees
// every materialized record carries exactly NumColumns fields.
type WipRecord [NumColumns]string

// Field returns the trimmed value at column index col.
func (r WipRecord) Field(col int) string {
	return strings.TrimSpace(r[col])
}

// WBS returns the record's WBS code.
func (r WipRecord) WBS() string { return r.Field(ColCodiceWBS) }

// Material returns the record's material code.
func (r WipRecord) Material() string { return r.Field(ColMateriale) }

// ValueInProcess returns the raw "Valore in lavorazione" field.
func (r WipRecord) ValueInProcess() string { return r.Field(ColValoreLavorazione) }

// Strings returns the record as a string slice in column order.
func (r WipRecord) Strings() []string {
	out := make([]string, NumColumns)
	copy(out, r[:])
	return out
}

// ColumnIndex returns the position of name in WipColumns, or -1.
func ColumnIndex(name string) int {
	for i, c := range WipColumns {
		if c == name {
			return i
		}
	}
	return -1
}

// LookupTable maps a trimmed business key to its descriptive attributes.
// Keys are opaque strings compared by exact match.
type LookupTable struct {
	Name    string
	entries map[string]map[string]string
	order   []string
}

// NewLookupTable creates an empty lookup table.
func NewLookupTable(name string) *LookupTable {
	return &LookupTable{
		Name:    name,
		entries: make(map[string]map[string]string),
	}
}

// Add registers key with attrs. The first occurrence of a key wins; it
// reports whether the key was new.
func (t *LookupTable) Add(key string, attrs map[string]string) bool {
	key = strings.TrimSpace(key)
	if _, exists := t.entries[key]; exists {
		return false
	}
	t.entries[key] = attrs
	t.order = append(t.order, key)
	return true
}

// Has reports whether key is present.
func (t *LookupTable) Has(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[strings.TrimSpace(key)]
	return ok
}

// Attr returns attribute name of key.
func (t *LookupTable) Attr(key, name string) (string, bool) {
	if t == nil {
		return "", false
	}
	attrs, ok := t.entries[strings.TrimSpace(key)]
	if !ok {
		return "", false
	}
	v, ok := attrs[name]
	return v, ok
}

// Keys returns the keys in insertion order.
func (t *LookupTable) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of distinct keys.
func (t *LookupTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// MissingKeys is a sorted, deduplicated set of keys absent from a lookup.
type MissingKeys []string

// AreaSnapshot is the total value in process attributed to an area on a
// calendar day. Date carries no time of day.
type AreaSnapshot struct {
	Area  string          `json:"area" validate:"required"`
	Date  Day             `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// HistorySeries is a sequence of snapshots sorted by (Date, Area) with at
// most one row per (Area, Date).
type HistorySeries []AreaSnapshot

// DetailRow is one record's contribution to a snapshot, kept for audit.
// It is also the row shape of the flat history layout.
type DetailRow struct {
	WBS   string          `json:"codice_wbs"`
	Value decimal.Decimal `json:"valore"`
	Date  Day             `json:"data_aggiornamento"`
	Area  string          `json:"area"`
}
