package dal

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"timeline_store/shared"
)

const schemaVer = 1

//go:embed scripts/*
var scripts embed.FS

// IProvider is the data-access surface of the store: uri-addressed queries
// and writes, plus the single-value lookup conveniences.
type IProvider interface {
	InitUpdateDb()
	Close() error

	// Query runs the read the uri describes. Empty projection means the
	// full projection map of the addressed table family.
	Query(uri string, projection []string, selection string, selectionArgs []any, sortOrder string) ([]Row, error)
	// Insert creates one row (plus, for timeline uris, the account's flags
	// row in the same transaction) and returns the new internal id.
	Insert(uri string, vals Values) (int64, error)
	// Update modifies rows; for a timeline-message uri the account's flags
	// row is upserted. Returns the affected message/user row count.
	Update(uri string, vals Values, selection string, selectionArgs []any) (int64, error)
	// Delete removes rows; message deletion cascades to flags rows within
	// the same transaction. Returns the affected row count.
	Delete(uri string, selection string, selectionArgs []any) (int64, error)

	OidToId(uri string, originId int64, oid string) (int64, error)
	IdToOid(kind OidKind, msgId int64, accountId int64) (string, error)
	IdToColumnValue(table, column string, id int64) (int64, error)
	MsgIdToUserId(msgUserColumn string, msgId int64) (int64, error)
	MsgIdToUsername(msgUserColumn string, msgId int64) (string, error)
	UserIdToName(userId int64) (string, error)
	UserNameToId(originId int64, username string) (int64, error)
	MsgSentDate(msgId int64) (int64, error)
}

type Provider struct {
	cfg      *shared.Config
	logger   shared.ILogger
	notifier shared.IChangeNotifier
	db       *sql.DB
	muDb     sync.RWMutex
}

func NewProvider(cfg *shared.Config, logger shared.ILogger, notifier shared.IChangeNotifier) IProvider {

	var err error
	var db *sql.DB

	// https://phiresky.github.io/blog/2020/sqlite-performance-tuning/
	// _synchronous=1 is "normal"
	cstr := "file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	db, err = sql.Open("sqlite3", fmt.Sprintf(cstr, cfg.DbFile))
	if err != nil {
		logger.Errorf("Failed to open/create DB file: %s: %v", cfg.DbFile, err)
		panic(err)
	}

	provider := Provider{
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
		db:       db,
	}

	return &provider
}

func (p *Provider) InitUpdateDb() {

	dbVer := 0
	sysParamsExists := false
	var err error
	var rows *sql.Rows

	rows, err = p.db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name='sys_params'")
	if err != nil {
		p.logger.Errorf("Failed to check if 'sys_params' table exists: %v", err)
		panic(err)
	}
	for rows.Next() {
		sysParamsExists = true
	}
	_ = rows.Close()
	if !sysParamsExists {
		p.logger.Printf("Database appears to be empty; current schema version is %d", schemaVer)
	} else {
		row := p.db.QueryRow("SELECT val FROM sys_params WHERE name='schema_ver'")
		if err = row.Scan(&dbVer); err != nil {
			p.logger.Errorf("Failed to query schema version: %v", err)
			panic(err)
		}
		p.logger.Printf("Database is at version %d; current schema version is %d", dbVer, schemaVer)
	}
	for i := dbVer; i < schemaVer; i += 1 {
		nextVer := i + 1
		fn := fmt.Sprintf("scripts/create-%02d.sql", nextVer)
		p.logger.Printf("Running %s", fn)
		var sqlBytes []byte
		if sqlBytes, err = scripts.ReadFile(fn); err != nil {
			p.logger.Errorf("Failed to read init script %s: %v", fn, err)
			panic(err)
		}
		sqlStr := string(sqlBytes)
		if _, err = p.db.Exec(sqlStr); err != nil {
			p.logger.Errorf("Failed to execute init script %s: %v", fn, err)
			panic(err)
		}
		_, err = p.db.Exec("UPDATE sys_params SET val=? WHERE name='schema_ver'", nextVer)
		if err != nil {
			p.logger.Errorf("Failed to update schema_ver to %d: %v", nextVer, err)
			panic(err)
		}
	}
}

func (p *Provider) Close() error {
	p.muDb.Lock()
	defer p.muDb.Unlock()
	return p.db.Close()
}
