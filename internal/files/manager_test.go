package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Resolve(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, nil)

	tests := []struct {
		rel  string
		want string
		ok   bool
	}{
		{"batch/WIP.xlsx", filepath.Join(root, "batch", "WIP.xlsx"), true},
		{"a/../b.txt", filepath.Join(root, "b.txt"), true},
		{"../secret", "", false},
		{"a/../../secret", "", false},
		{"/etc/passwd", "", false},
		{"", "", false},
		{".", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := m.Resolve(tt.rel)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrOutsideRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_WriteReadList(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, nil)

	require.NoError(t, m.WriteFile("b1/WIP.xlsx", []byte("one")))
	require.NoError(t, m.WriteFile("b1/WIP.xlsx", []byte("two")))
	require.NoError(t, m.WriteFile("b1/report_mancanti.xlsx", []byte("r")))

	data, err := m.ReadFile("b1/WIP.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	assert.True(t, m.FileExists("b1/WIP.xlsx"))
	assert.False(t, m.FileExists("b1"), "directories are not files")
	assert.False(t, m.FileExists("../x"))

	names, err := m.ListFiles("b1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"WIP.xlsx", "report_mancanti.xlsx"}, names)

	_, err = os.Stat(filepath.Join(root, "b1", "WIP.xlsx"))
	assert.NoError(t, err)
}

func TestManager_RejectsEscapes(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	assert.ErrorIs(t, m.WriteFile("../evil", []byte("x")), ErrOutsideRoot)
	_, err := m.ReadFile("../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}
