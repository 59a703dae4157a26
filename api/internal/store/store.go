package store

import "database/sql"

var ErrNotFound = sql.ErrNoRows
