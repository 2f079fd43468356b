package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DefaultTable is the SQL table used when none is configured.
const DefaultTable = "genops_documents"

// documentRow is the SQL form of a Document.
type documentRow struct {
	Collection    string `gorm:"column:collection;primaryKey;size:128"`
	DocKey        string `gorm:"column:doc_key;primaryKey;size:255"`
	Result        []byte `gorm:"column:result;not null"`
	CreatedUnixMs int64  `gorm:"column:created_at;not null"`
	Operation     string `gorm:"column:operation;size:128"`
}

// SQL stores documents in one table keyed by (collection, doc_key).
type SQL struct {
	db    *gorm.DB
	table string
	owned bool
}

// NewSQL wraps an open gorm handle and migrates the table.
func NewSQL(ctx context.Context, db *gorm.DB, table string) (*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := db.WithContext(ctx).Table(table).AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate %s: %w", table, err)
	}
	return &SQL{db: db, table: table}, nil
}

// OpenSQL opens a gorm connection for driver (sqlite, postgres or mysql).
func OpenSQL(ctx context.Context, driver, dsn, table string) (*SQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	s, err := NewSQL(ctx, db, table)
	if err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	s.owned = true
	return s, nil
}

func (s *SQL) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateAddress(collection, key); err != nil {
		return Document{}, false, err
	}

	var row documentRow
	err := s.db.WithContext(ctx).Table(s.table).
		Where(&documentRow{Collection: collection, DocKey: key}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("store: sql get: %w", err)
	}

	return Document{
		Result:    row.Result,
		CreatedAt: row.CreatedUnixMs,
		Operation: row.Operation,
	}, true, nil
}

func (s *SQL) Set(ctx context.Context, collection, key string, doc Document) error {
	if err := validateAddress(collection, key); err != nil {
		return err
	}

	row := documentRow{
		Collection:    collection,
		DocKey:        key,
		Result:        doc.Result,
		CreatedUnixMs: doc.CreatedAt,
		Operation:     doc.Operation,
	}
	err := s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"result", "created_at", "operation"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("store: sql set: %w", err)
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool if OpenSQL created it.
func (s *SQL) Close(context.Context) error {
	if !s.owned {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ Store  = (*SQL)(nil)
	_ Pinger = (*SQL)(nil)
	_ Closer = (*SQL)(nil)
)
