package store

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(raws ...string) []DeclRecord {
	recs := make([]DeclRecord, len(raws))
	for i, raw := range raws {
		name := raw
		for j, r := range raw {
			if r == '>' || r == '<' || r == '=' || r == '!' || r == '~' {
				name = raw[:j]
				break
			}
		}
		recs[i] = DeclRecord{Position: i, Name: name, NormalizedName: name, Raw: raw}
	}
	return recs
}

func TestDiffDeclarationsEmpty(t *testing.T) {
	from := records("mock>=1.2", "coverage>=3.6")
	diff := DiffDeclarations("a", "b", from, from)
	assert.True(t, diff.Empty())
	assert.Equal(t, "a", diff.From)
	assert.Equal(t, "b", diff.To)
}

func TestDiffDeclarationsAddedRemoved(t *testing.T) {
	diff := DiffDeclarations("a", "b",
		records("mock>=1.2", "mox3>=0.7.0"),
		records("mock>=1.2", "bandit>=0.13.2"),
	)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "bandit", diff.Added[0].NormalizedName)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "mox3", diff.Removed[0].NormalizedName)
	assert.Empty(t, diff.Changed)
	assert.Empty(t, diff.Moved)
}

func TestDiffDeclarationsChanged(t *testing.T) {
	diff := DiffDeclarations("a", "b",
		records("mock>=1.2", "coverage>=3.6"),
		records("mock>=1.3", "coverage>=3.6"),
	)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, DeclChange{Name: "mock", Before: "mock>=1.2", After: "mock>=1.3"}, diff.Changed[0])
}

func TestDiffDeclarationsMoved(t *testing.T) {
	// Same declarations, different order. The smaller displacement is
	// the one reported.
	diff := DiffDeclarations("a", "b",
		records("mock>=1.2", "coverage>=3.6", "bandit>=0.13.2"),
		records("bandit>=0.13.2", "mock>=1.2", "coverage>=3.6"),
	)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Changed)
	assert.Equal(t, []string{"bandit"}, diff.Moved)
}

func TestDiffDeclarationsMoveAroundChange(t *testing.T) {
	// A reorder and an edit in the same revision are reported separately.
	diff := DiffDeclarations("a", "b",
		records("mock>=1.2", "coverage>=3.6", "bandit>=0.13.2"),
		records("coverage>=4.0", "bandit>=0.13.2", "mock>=1.2"),
	)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "coverage", diff.Changed[0].Name)
	assert.Equal(t, []string{"mock"}, diff.Moved)
}

func TestDiffDeclarationsDisjoint(t *testing.T) {
	diff := DiffDeclarations("a", "b",
		records("mock>=1.2"),
		records("bandit>=0.13.2"),
	)
	assert.Len(t, diff.Added, 1)
	assert.Len(t, diff.Removed, 1)
	assert.Empty(t, diff.Moved)
	assert.False(t, diff.Empty())
}

func TestLCS(t *testing.T) {
	tests := []struct {
		a, b, want []string
	}{
		{nil, nil, nil},
		{[]string{"x"}, nil, nil},
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{[]string{"a", "b", "c"}, []string{"c", "a", "b"}, []string{"a", "b"}},
		{[]string{"a", "b", "c", "d"}, []string{"b", "d"}, []string{"b", "d"}},
		{[]string{"a", "b"}, []string{"c", "d"}, nil},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.want, lcs(tt.a, tt.b), "case %d", i)
	}
}

func TestStoreQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := &Store{db: db}

	boom := fmt.Errorf("disk I/O error")
	mock.ExpectQuery("SELECT id, path, content_hash").WillReturnError(boom)

	_, err = s.ListSnapshots(t.Context(), "reqs.txt")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreScanErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := &Store{db: db}

	// A malformed taken_at column must surface as an error, not a zero time.
	rows := sqlmock.NewRows([]string{"id", "path", "content_hash", "taken_at", "line_count"}).
		AddRow("id-1", "reqs.txt", "hash", "not-a-timestamp", 3)
	mock.ExpectQuery("SELECT id, path, content_hash").WillReturnRows(rows)

	_, err = s.ListSnapshots(t.Context(), "reqs.txt")
	assert.ErrorContains(t, err, "parse taken_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}
