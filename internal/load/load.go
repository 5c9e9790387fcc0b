// Package load reads the record and geometry dumps that the external WASM
// parser frontend writes, and materializes them into stores. The parser
// itself stays outside this module; this is the consuming edge.
package load

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/agentic-research/ifcgraph/internal/geom"
	"github.com/agentic-research/ifcgraph/internal/store"
	"github.com/flywave/go3d/vec3"
)

// Record dumps come in two flavors: a JSON-lines table (one record per
// line) which is materialized into a MemoryStore, and a SQLite database
// which is served incrementally by SQLiteStore. The SQLite flavor opens
// the file directly on disk; only the line-based flavor goes through the
// billy filesystem (tests use memfs).
const maxLineBytes = 16 << 20

// Loader reads dumps through a billy filesystem.
type Loader struct {
	FS  billy.Filesystem
	Log *zap.Logger
}

func NewLoader(fs billy.Filesystem, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{FS: fs, Log: log}
}

// recordLine is the wire shape of one table row.
type recordLine struct {
	ID     uint32          `json:"id"`
	Type   string          `json:"type"`
	Fields json.RawMessage `json:"fields"`
}

// Open loads a record dump into a Source, picking the store variant from
// the file extension (.db → incremental SQLite, everything else →
// materialized JSON lines).
func (l *Loader) Open(path string) (store.Source, error) {
	if filepath.Ext(path) == ".db" {
		return store.OpenSQLiteStore(path)
	}
	return l.openLines(path)
}

func (l *Loader) openLines(path string) (*store.MemoryStore, error) {
	start := time.Now()
	f, err := l.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record dump %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // safe to ignore

	s := store.NewMemoryStore()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row recordLine
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("%s:%d: decode record: %w", path, lineNo, err)
		}
		fields, err := store.DecodeFields(row.Fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: record %d: %w", path, lineNo, row.ID, err)
		}
		s.Add(&store.Record{ID: row.ID, Type: row.Type, Fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read record dump %s: %w", path, err)
	}

	l.Log.Info("record dump loaded",
		zap.String("path", path),
		zap.Int("records", s.Len()),
		zap.Int("dangling_refs", s.DanglingRefs()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return s, nil
}

// fragmentLine is the wire shape of one placed geometry instance.
// Vertices and normals are flat xyz triples.
type fragmentLine struct {
	Element  uint32     `json:"element"`
	Color    [4]float64 `json:"color"`
	Vertices []float32  `json:"vertices"`
	Normals  []float32  `json:"normals"`
	Indices  []uint32   `json:"indices"`
}

// Fragments reads a geometry fragment dump. Fragments stream to fn in file
// order and are not retained, matching their consume-then-discard
// lifecycle.
func (l *Loader) Fragments(path string, fn func(geom.Fragment) error) error {
	f, err := l.FS.Open(path)
	if err != nil {
		return fmt.Errorf("open fragment dump %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // safe to ignore

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row fragmentLine
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return fmt.Errorf("%s:%d: decode fragment: %w", path, lineNo, err)
		}
		if len(row.Vertices)%3 != 0 || len(row.Normals) != len(row.Vertices) {
			return fmt.Errorf("%s:%d: fragment buffers misaligned", path, lineNo)
		}
		vertexCount := uint32(len(row.Vertices) / 3)
		for _, idx := range row.Indices {
			if idx >= vertexCount {
				return fmt.Errorf("%s:%d: index %d out of range (%d vertices)",
					path, lineNo, idx, vertexCount)
			}
		}
		frag := geom.Fragment{
			ElementID: row.Element,
			Vertices:  packVec3(row.Vertices),
			Normals:   packVec3(row.Normals),
			Indices:   row.Indices,
			Color: geom.ColorKey{
				R: row.Color[0], G: row.Color[1], B: row.Color[2], A: row.Color[3],
			},
		}
		if err := fn(frag); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func packVec3(flat []float32) []vec3.T {
	out := make([]vec3.T, len(flat)/3)
	for i := range out {
		out[i] = vec3.T{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out
}
