// Package all wires every built-in storage backend into the storage factory.
//
// The package exists purely for side effects: a blank import runs each
// backend's init, which registers its factory with the storage package. A
// binary that should support only a subset of backends can blank-import the
// backends it wants instead of this package.
package all

import (
	_ "booketl/internal/storage/mssql"
	_ "booketl/internal/storage/mysql"
	_ "booketl/internal/storage/postgres"
	_ "booketl/internal/storage/sqlite"
)
