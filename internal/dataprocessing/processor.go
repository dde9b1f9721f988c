package dataprocessing

import (
	"bytes"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Export is one raw WIP text export held in memory.
type Export struct {
	Name string
	Data []byte
}

// FileSummary reports how one export contributed to a consolidation.
type FileSummary struct {
	Name     string `json:"name"`
	Records  int    `json:"records"`
	Rejected int    `json:"rejected"`
	Failed   bool   `json:"failed"`
}

// Consolidation is the unified record set of several exports.
type Consolidation struct {
	Records     []domain.WipRecord
	Files       []FileSummary
	Diagnostics domain.Diagnostics
}

// Consolidate parses every export and concatenates the records in input
// order, then in-file order. Nothing is merged or summed here. An export
// that yields no rows contributes nothing and does not stop the others.
// The caller owns the rule on how many exports make a complete batch.
func Consolidate(exports []Export) Consolidation {
	var out Consolidation
	for _, exp := range exports {
		res := ParseExport(exp.Name, bytes.NewReader(exp.Data))
		out.Records = append(out.Records, res.Records...)
		out.Files = append(out.Files, FileSummary{
			Name:     exp.Name,
			Records:  len(res.Records),
			Rejected: res.Rejected,
			Failed:   res.Err != nil,
		})
		out.Diagnostics = append(out.Diagnostics, res.Diagnostics()...)
	}
	return out
}
