package db

import (
	"fmt"
	"path/filepath"

	glebarez "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// obsługiwane sterowniki
const (
	DriverSQLite   = "sqlite"  // czyste Go (glebarez), domyślny
	DriverSQLite3  = "sqlite3" // cgo (mattn)
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Handle struct {
	DB     *gorm.DB
	Driver string
	Path   string // tylko sqlite
}

// Open otwiera bazę wg sterownika. Dla sqlite pusty dsn = <dir>/feedsync.db.
func Open(driver, dsn, dir string) (*Handle, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	h := &Handle{Driver: driver}

	var dial gorm.Dialector
	switch driver {
	case DriverSQLite, DriverSQLite3:
		if dsn == "" {
			dsn = filepath.Join(dir, "feedsync.db")
		}
		h.Path = dsn
		if driver == DriverSQLite {
			dial = glebarez.Open(dsn)
		} else {
			dial = sqlite.Open(dsn)
		}
	case DriverMySQL:
		dial = mysql.Open(dsn)
	case DriverPostgres:
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("nieznany sterownik bazy %q", driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // logger.Info dla verbose SQL
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	h.DB = gdb
	return h, nil
}

// OpenAt – sqlite w katalogu aplikacji
func OpenAt(dir string) (*Handle, error) {
	return Open(DriverSQLite, "", dir)
}

func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
