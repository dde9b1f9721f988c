package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// ReferenceReport holds the keys referenced by WIP records but absent from
// the lookup tables.
type ReferenceReport struct {
	MissingWBE       domain.MissingKeys `json:"missing_wbe"`
	MissingMaterials domain.MissingKeys `json:"missing_materials"`
	RecordsChecked   int                `json:"records_checked"`
}

// Passed reports whether every referenced key was found.
func (r ReferenceReport) Passed() bool {
	return len(r.MissingWBE) == 0 && len(r.MissingMaterials) == 0
}

// Diagnostics renders the report as a pass/fail diagnostic set.
func (r ReferenceReport) Diagnostics() domain.Diagnostics {
	var diags domain.Diagnostics
	if r.Passed() {
		diags.Info(domain.CodeReferencesOK,
			fmt.Sprintf("all references found across %d records", r.RecordsChecked), "")
		return diags
	}
	if n := len(r.MissingWBE); n > 0 {
		diags.Warn(domain.CodeMissingWBE, fmt.Sprintf("%d WBS codes missing from the WBE table", n), "")
	}
	if n := len(r.MissingMaterials); n > 0 {
		diags.Warn(domain.CodeMissingMaterial, fmt.Sprintf("%d materials missing from the material table", n), "")
	}
	return diags
}

// CheckReferences computes the WBS codes absent from the WBE table and the
// material codes absent from the material table. Records are never mutated.
// Blank keys are not references and are ignored.
func CheckReferences(records []domain.WipRecord, wbe, materials *domain.LookupTable) ReferenceReport {
	return ReferenceReport{
		MissingWBE:       missingKeys(records, domain.WipRecord.WBS, wbe),
		MissingMaterials: missingKeys(records, domain.WipRecord.Material, materials),
		RecordsChecked:   len(records),
	}
}

func missingKeys(records []domain.WipRecord, key func(domain.WipRecord) string, table *domain.LookupTable) domain.MissingKeys {
	seen := make(map[string]struct{})
	for _, rec := range records {
		k := strings.TrimSpace(key(rec))
		if k == "" || table.Has(k) {
			continue
		}
		seen[k] = struct{}{}
	}

	out := make(domain.MissingKeys, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
