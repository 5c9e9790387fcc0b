package tests

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/ifcgraph/internal/load"
	"github.com/agentic-research/ifcgraph/internal/model"
	"github.com/agentic-research/ifcgraph/internal/props"
	"github.com/agentic-research/ifcgraph/internal/schema"
)

// modelDump is a small but complete building: project > site > building >
// storey, a wall contained in the storey, and a property set on the wall
// whose single value must survive recursive resolution.
const modelDump = `{"id": 1, "type": "IFCPROJECT", "fields": {"Name": "Demo Project"}}
{"id": 2, "type": "IFCSITE", "fields": {"Name": "Site"}}
{"id": 3, "type": "IFCBUILDING", "fields": {"Name": "Building A"}}
{"id": 4, "type": "IFCBUILDINGSTOREY", "fields": {"Name": "Level 1"}}
{"id": 5, "type": "IFCWALL", "fields": {"Name": "Wall-005"}}
{"id": 10, "type": "IFCPROPERTYSET", "fields": {"Name": "Pset_WallCommon", "HasProperties": [{"ref": 11}]}}
{"id": 11, "type": "IFCPROPERTYSINGLEVALUE", "fields": {"Name": "IsExternal", "NominalValue": true}}
{"id": 100, "type": "IFCRELAGGREGATES", "fields": {"RelatingObject": {"ref": 1}, "RelatedObjects": [{"ref": 2}]}}
{"id": 101, "type": "IFCRELAGGREGATES", "fields": {"RelatingObject": {"ref": 2}, "RelatedObjects": [{"ref": 3}]}}
{"id": 102, "type": "IFCRELAGGREGATES", "fields": {"RelatingObject": {"ref": 3}, "RelatedObjects": [{"ref": 4}]}}
{"id": 103, "type": "IFCRELCONTAINEDINSPATIALSTRUCTURE", "fields": {"RelatingStructure": {"ref": 4}, "RelatedElements": [{"ref": 5}]}}
{"id": 104, "type": "IFCRELDEFINESBYPROPERTIES", "fields": {"RelatingPropertyDefinition": {"ref": 10}, "RelatedObjects": [{"ref": 5}]}}
`

func openDemoModel(t *testing.T) *model.Model {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/model.jsonl", []byte(modelDump), 0o644))

	src, err := load.NewLoader(fs, nil).Open("/model.jsonl")
	require.NoError(t, err)

	m, err := model.NewRegistry(nil).Open(context.Background(), src, schema.Default())
	require.NoError(t, err)
	return m
}

func TestEndToEndSpatialStructure(t *testing.T) {
	m := openDemoModel(t)

	root, err := m.SpatialStructure(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, "IFCPROJECT", root.Type)
	require.Equal(t, "Demo Project", root.Properties["Name"])
	require.Equal(t, 5, root.Count())

	storey := root.Children[0].Children[0].Children[0]
	require.Equal(t, "IFCBUILDINGSTOREY", storey.Type)
	require.Len(t, storey.Children, 1)
	require.Equal(t, "IFCWALL", storey.Children[0].Type)
}

func TestEndToEndPropertyResolution(t *testing.T) {
	m := openDemoModel(t)

	sets, err := m.PropertySets(context.Background(), 5, true)
	require.NoError(t, err)
	require.Len(t, sets, 1)

	values, err := props.Select(sets, "$..NominalValue")
	require.NoError(t, err)
	require.Equal(t, []any{true}, values)
}

func TestEndToEndSQLiteVariant(t *testing.T) {
	// The same model served incrementally from a SQLite dump must answer
	// identically to the materialized path.
	dbPath := filepath.Join(t.TempDir(), "model.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE records (
			id     INTEGER NOT NULL UNIQUE,
			type   TEXT NOT NULL,
			fields TEXT NOT NULL
		);
		CREATE INDEX idx_records_type ON records(type);
	`)
	require.NoError(t, err)

	rows := []struct {
		id     int
		typ    string
		fields string
	}{
		{1, "IFCPROJECT", `{"Name": "Demo Project"}`},
		{2, "IFCSITE", `{"Name": "Site"}`},
		{100, "IFCRELAGGREGATES", `{"RelatingObject": {"ref": 1}, "RelatedObjects": [{"ref": 2}]}`},
	}
	for _, r := range rows {
		_, err = db.Exec("INSERT INTO records (id, type, fields) VALUES (?, ?, ?)",
			r.id, r.typ, r.fields)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	src, err := load.NewLoader(memfs.New(), nil).Open(dbPath)
	require.NoError(t, err)

	registry := model.NewRegistry(nil)
	m, err := registry.Open(context.Background(), src, schema.Default())
	require.NoError(t, err)
	defer func() { _ = registry.Close(m.ID) }()

	root, err := m.SpatialStructure(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, uint32(1), root.ID)
	require.Len(t, root.Children, 1)
	require.Equal(t, "IFCSITE", root.Children[0].Type)
}
