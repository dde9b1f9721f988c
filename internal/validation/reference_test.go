package validation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

func rec(wbs, material string) domain.WipRecord {
	var r domain.WipRecord
	r[domain.ColCodiceWBS] = wbs
	r[domain.ColMateriale] = material
	return r
}

func table(name string, keys ...string) *domain.LookupTable {
	t := domain.NewLookupTable(name)
	for _, k := range keys {
		t.Add(k, map[string]string{})
	}
	return t
}

func TestCheckReferences_MissingWBE(t *testing.T) {
	records := []domain.WipRecord{rec("W1", "M1"), rec("W3", "M1")}

	report := CheckReferences(records, table("wbe", "W1", "W2"), table("mat", "M1"))

	assert.Equal(t, domain.MissingKeys{"W3"}, report.MissingWBE)
	assert.Empty(t, report.MissingMaterials)
	assert.False(t, report.Passed())
	assert.Equal(t, []string{domain.CodeMissingWBE}, report.Diagnostics().Codes())
}

func TestCheckReferences_SortedAndDeduplicated(t *testing.T) {
	records := []domain.WipRecord{
		rec("Z9", "M9"), rec("A1", "M2"), rec("Z9", "M9"), rec(" A1 ", "M1"),
	}

	report := CheckReferences(records, table("wbe"), table("mat", "M1"))

	assert.Equal(t, domain.MissingKeys{"A1", "Z9"}, report.MissingWBE)
	assert.Equal(t, domain.MissingKeys{"M2", "M9"}, report.MissingMaterials)
	assert.Equal(t, 4, report.RecordsChecked)
}

func TestCheckReferences_TrimmedExactMatch(t *testing.T) {
	records := []domain.WipRecord{rec("w1", "M1 ")}

	report := CheckReferences(records, table("wbe", " W1"), table("mat", "M1"))

	assert.Equal(t, domain.MissingKeys{"w1"}, report.MissingWBE, "comparison is case sensitive")
	assert.Empty(t, report.MissingMaterials)
}

func TestCheckReferences_BlankKeysIgnored(t *testing.T) {
	report := CheckReferences([]domain.WipRecord{rec("", "  ")}, table("wbe"), table("mat"))
	assert.True(t, report.Passed())
}

func TestCheckReferences_Pass(t *testing.T) {
	report := CheckReferences([]domain.WipRecord{rec("W1", "M1")}, table("wbe", "W1"), table("mat", "M1"))

	require.True(t, report.Passed())
	diags := report.Diagnostics()
	assert.Equal(t, []string{domain.CodeReferencesOK}, diags.Codes())
	assert.False(t, diags.HasWarnings())
}

func TestCheckReferences_PermutationInvariant(t *testing.T) {
	records := []domain.WipRecord{
		rec("W1", "M1"), rec("W2", "M4"), rec("W5", "M2"), rec("W3", "M3"), rec("W5", "M1"), rec("W7", "M8"),
	}
	wbeKeys := []string{"W1", "W2", "W3", "W4"}
	matKeys := []string{"M1", "M2", "M3"}

	want := CheckReferences(records, table("wbe", wbeKeys...), table("mat", matKeys...))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.WipRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		wk := append([]string(nil), wbeKeys...)
		rng.Shuffle(len(wk), func(a, b int) { wk[a], wk[b] = wk[b], wk[a] })
		mk := append([]string(nil), matKeys...)
		rng.Shuffle(len(mk), func(a, b int) { mk[a], mk[b] = mk[b], mk[a] })

		got := CheckReferences(shuffled, table("wbe", wk...), table("mat", mk...))
		assert.Equal(t, want, got)
	}
}

func TestCheckReferences_NilTablesReportEverything(t *testing.T) {
	report := CheckReferences([]domain.WipRecord{rec("W1", "M1")}, nil, nil)
	assert.Equal(t, domain.MissingKeys{"W1"}, report.MissingWBE)
	assert.Equal(t, domain.MissingKeys{"M1"}, report.MissingMaterials)
}
