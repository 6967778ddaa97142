// Package testsupport provides helpers shared by database-backed tests.
package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens an isolated in-memory SQLite database. Each call
// returns a distinct database so parallel tests never share history tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("file:blogtest%d?mode=memory&cache=shared", dbSeq.Add(1))
	return sql.Open("sqlite3", name)
}
