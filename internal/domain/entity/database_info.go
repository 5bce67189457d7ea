package entity

import "time"

// DatabaseInfo describes one database discovered on the target. UserCount is
// derived by rebinding the connection to the database and counting principals;
// CountError carries the failure detail when that per-database query fails.
type DatabaseInfo struct {
	Name       string
	CreateDate time.Time
	UserCount  int
	CountError string
}
