package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	driver "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/neo4j"
)

func TestUpsertHierarchy_SkipsNonSubheadingEntries(t *testing.T) {
	d := &fakeDriver{results: []driver.Result{singleCount(2)}}
	repo := NewNomenclatureGraphRepo(d, nil)

	merged, err := repo.UpsertHierarchy(context.Background(), []catalog.Entry{
		{Code: "090121", Title: "Café tostado sin descafeinar", Level: 6},
		{Code: "090190", Title: "Los demás", Level: 6},
		{Code: "0901", Title: "Café", Level: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), merged)

	require.Len(t, d.params, 1)
	rows := d.params[0]["rows"].([]map[string]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "09", rows[0]["chapter"])
	assert.Equal(t, "0901", rows[0]["heading"])
	assert.Equal(t, "090121", rows[0]["subheading"])
}

func TestUpsertHierarchy_NoSubheadingsIsNoop(t *testing.T) {
	d := &fakeDriver{}
	repo := NewNomenclatureGraphRepo(d, nil)

	merged, err := repo.UpsertHierarchy(context.Background(), []catalog.Entry{
		{Code: "0901", Title: "Café", Level: 4},
	})
	require.NoError(t, err)
	assert.Zero(t, merged)
	assert.Empty(t, d.cyphers)
}

func TestAttachNotes_GroupsByScopeAndSkipsSections(t *testing.T) {
	d := &fakeDriver{results: []driver.Result{singleCount(1), singleCount(1)}}
	repo := NewNomenclatureGraphRepo(d, nil)

	attached, err := repo.AttachNotes(context.Background(), []catalog.LegalNote{
		{ID: 1, Scope: catalog.ScopeChapter, ScopeCode: "09", Number: 1, Text: "nota de capítulo"},
		{ID: 2, Scope: catalog.ScopeHeading, ScopeCode: "0901", Number: 1, Text: "nota de partida"},
		{ID: 3, Scope: catalog.ScopeSection, ScopeCode: "II", Number: 1, Text: "nota de sección"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), attached)
	// One UNWIND statement per anchored label; the section note has no anchor.
	assert.Len(t, d.cyphers, 2)
}

func TestPathToRoot_ReturnsChapterFirst(t *testing.T) {
	d := &fakeDriver{results: []driver.Result{&fakeResult{records: []*neo4jRecord{
		record("09", "0901", "090121", "Café tostado sin descafeinar"),
	}}}}
	repo := NewNomenclatureGraphRepo(d, nil)

	path, err := repo.PathToRoot(context.Background(), "090121")
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, PathSegment{Level: "chapter", Code: "09"}, path[0])
	assert.Equal(t, PathSegment{Level: "heading", Code: "0901"}, path[1])
	assert.Equal(t, "090121", path[2].Code)
	assert.Equal(t, "Café tostado sin descafeinar", path[2].Title)
}

func TestPathToRoot_RejectsBadCode(t *testing.T) {
	d := &fakeDriver{}
	repo := NewNomenclatureGraphRepo(d, nil)

	_, err := repo.PathToRoot(context.Background(), "0901")
	require.Error(t, err)
	assert.Empty(t, d.cyphers)
}

func TestSiblingHeadings_ReturnsOrderedCodes(t *testing.T) {
	d := &fakeDriver{results: []driver.Result{&fakeResult{records: []*neo4jRecord{
		record("0902"), record("0903"),
	}}}}
	repo := NewNomenclatureGraphRepo(d, nil)

	siblings, err := repo.SiblingHeadings(context.Background(), "0901")
	require.NoError(t, err)
	assert.Equal(t, []string{"0902", "0903"}, siblings)
}

func TestSiblingHeadings_RejectsBadHeading(t *testing.T) {
	repo := NewNomenclatureGraphRepo(&fakeDriver{}, nil)

	_, err := repo.SiblingHeadings(context.Background(), "090121")
	assert.Error(t, err)
}

func TestNotesInScope_MapsRecords(t *testing.T) {
	d := &fakeDriver{results: []driver.Result{&fakeResult{records: []*neo4jRecord{
		record(int64(1), "CHAPTER", "09", int64(1), "nota de capítulo"),
		record(int64(4), "SUBHEADING", "090121", int64(2), "nota de subpartida"),
	}}}}
	repo := NewNomenclatureGraphRepo(d, nil)

	notes, err := repo.NotesInScope(context.Background(), "090121")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, catalog.ScopeChapter, notes[0].Scope)
	assert.Equal(t, "09", notes[0].ScopeCode)
	assert.Equal(t, 2, notes[1].Number)
	assert.Equal(t, "nota de subpartida", notes[1].Text)
}

func TestStats_BuildsCountMap(t *testing.T) {
	d := &fakeDriver{results: []driver.Result{&fakeResult{records: []*neo4jRecord{
		record("chapters", int64(21)),
		record("headings", int64(96)),
		record("subheadings", int64(402)),
		record("notes", int64(58)),
	}}}}
	repo := NewNomenclatureGraphRepo(d, nil)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(21), stats["chapters"])
	assert.Equal(t, int64(402), stats["subheadings"])
}

func TestEnsureConstraints_RunsAllStatements(t *testing.T) {
	d := &fakeDriver{}
	repo := NewNomenclatureGraphRepo(d, nil)

	require.NoError(t, repo.EnsureConstraints(context.Background()))
	assert.Len(t, d.cyphers, 4)
}

//Personal.AI order the ending
