package opsdb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-itad-ops-dashboard/internal/config"
	"go-itad-ops-dashboard/internal/connectors/vendormap"
)

// Store wraps direct MySQL access to the operations database for drill-down
// queries that bypass the operations API.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
	dbName       string
	vendorMap    *vendormap.Store
}

// NewStore creates a MySQL-backed store. vendorMap may be nil, in which case
// vendor drill-down filters match nothing.
func NewStore(cfg config.Config, vendorMap *vendormap.Store) (*Store, error) {
	db, err := sql.Open("mysql", cfg.OpsMySQLDSN())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpsDBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:           db,
		queryTimeout: cfg.OpsDBQueryTimeout,
		dbName:       cfg.OpsDBName,
		vendorMap:    vendorMap,
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
