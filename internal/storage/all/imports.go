// Package all registers every built-in storage backend. Import it for side
// effects from the wiring layer:
//
//	import _ "meshjoin/internal/storage/all"
//
// after which storage.New and storage.EnsureTable accept the kinds
// "postgres", "mssql", "mysql" and "sqlite".
package all

import (
	_ "meshjoin/internal/storage/mssql"
	_ "meshjoin/internal/storage/mysql"
	_ "meshjoin/internal/storage/postgres"
	_ "meshjoin/internal/storage/sqlite"
)
