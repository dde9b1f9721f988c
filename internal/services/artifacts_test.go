package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactRepository_SaveOpenList(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir(), nil)
	batch := uuid.NewString()

	require.NoError(t, repo.Save(batch, newArtifact("b.csv", ContentTypeCSV, []byte("b"))))
	require.NoError(t, repo.Save(batch, newArtifact("a.xlsx", ContentTypeXLSX, []byte("a"))))

	data, err := repo.Open(batch, "b.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)

	names, err := repo.List(batch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xlsx", "b.csv"}, names)
}

func TestArtifactRepository_NotFound(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir(), nil)
	batch := uuid.NewString()

	_, err := repo.Open(batch, "WIP.xlsx")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = repo.List(batch)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestArtifactRepository_RejectsUnsafePaths(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir(), nil)
	batch := uuid.NewString()

	tests := []struct {
		name  string
		batch string
		file  string
		want  error
	}{
		{"batch traversal", "../etc", "passwd", ErrInvalidBatchID},
		{"non uuid batch", "latest", "WIP.xlsx", ErrInvalidBatchID},
		{"name with slash", batch, "../WIP.xlsx", ErrArtifactNotFound},
		{"name with backslash", batch, `..\WIP.xlsx`, ErrArtifactNotFound},
		{"dot dot", batch, "..", ErrArtifactNotFound},
		{"empty", batch, "", ErrArtifactNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Open(tt.batch, tt.file)
			assert.ErrorIs(t, err, tt.want)
			assert.Error(t, repo.Save(tt.batch, newArtifact(tt.file, ContentTypeCSV, nil)))
		})
	}
}

func TestResultArtifact(t *testing.T) {
	res := &Result{Artifacts: []Artifact{newArtifact("x.csv", ContentTypeCSV, []byte("12"))}}

	a, ok := res.Artifact("x.csv")
	require.True(t, ok)
	assert.Equal(t, 2, a.Size)

	_, ok = res.Artifact("y.csv")
	assert.False(t, ok)
}
