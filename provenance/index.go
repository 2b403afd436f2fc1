package provenance

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"arxmerge/arxml"
)

const indexSchema = `
CREATE TABLE fragments (
	id   INTEGER PRIMARY KEY,
	uri  TEXT NOT NULL UNIQUE
);
CREATE TABLE elements (
	id   INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	tag  TEXT NOT NULL
);
CREATE TABLE sources (
	element_id  INTEGER NOT NULL REFERENCES elements(id),
	fragment_id INTEGER NOT NULL REFERENCES fragments(id),
	seq         INTEGER NOT NULL,
	tag         TEXT NOT NULL,
	PRIMARY KEY (element_id, seq)
);
CREATE VIEW shared AS
	SELECT e.path, COUNT(DISTINCT s.fragment_id) AS fragments
	FROM elements e JOIN sources s ON s.element_id = e.id
	GROUP BY e.id HAVING COUNT(*) > 1;
`

// Index serializes provenance map into SQLite database image, so it could be
// queried with regular tools when investigating merge results.
func Index(m *Map) (data []byte, err error) {
	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenMemory)
	if err != nil {
		return nil, fmt.Errorf("open in-memory db: %w", err)
	}
	defer conn.Close()

	if err := sqlitex.ExecuteScript(conn, indexSchema, nil); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := fill(conn, m); err != nil {
		return nil, err
	}

	data, err = conn.Serialize("main")
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return data, nil
}

func fill(conn *sqlite.Conn, m *Map) (err error) {
	defer sqlitex.Save(conn)(&err)

	fragments := make(map[*arxml.Tree]int64)
	for id, sources := range m.All() {
		if err := sqlitex.Execute(conn, `INSERT INTO elements (id, path, tag) VALUES (?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{int64(id), m.path(id), m.merged.Node(id).Tag}}); err != nil {
			return fmt.Errorf("insert element %d: %w", id, err)
		}
		for seq, src := range sources {
			fid, ok := fragments[src.Tree]
			if !ok {
				fid = int64(len(fragments) + 1)
				if err := sqlitex.Execute(conn, `INSERT INTO fragments (id, uri) VALUES (?, ?)`,
					&sqlitex.ExecOptions{Args: []any{fid, src.Tree.URI}}); err != nil {
					return fmt.Errorf("insert fragment %q: %w", src.Tree.URI, err)
				}
				fragments[src.Tree] = fid
			}
			if err := sqlitex.Execute(conn, `INSERT INTO sources (element_id, fragment_id, seq, tag) VALUES (?, ?, ?, ?)`,
				&sqlitex.ExecOptions{Args: []any{int64(id), fid, int64(seq), src.Element().Tag}}); err != nil {
				return fmt.Errorf("insert source of element %d: %w", id, err)
			}
		}
	}
	return nil
}

// Shared reads back (path, fragments) pairs of merged elements having more
// than one source from database image produced by Index.
func Shared(data []byte) (map[string]int, error) {
	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenMemory)
	if err != nil {
		return nil, fmt.Errorf("open in-memory db: %w", err)
	}
	defer conn.Close()

	if err := conn.Deserialize("main", data); err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}
	res := make(map[string]int)
	err = sqlitex.Execute(conn, `SELECT path, fragments FROM shared`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			res[stmt.ColumnText(0)] = stmt.ColumnInt(1)
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("query shared elements: %w", err)
	}
	return res, nil
}
