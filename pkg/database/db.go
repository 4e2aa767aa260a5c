package database

import (
	"database/sql"
	"fmt"
	"time"

	"contractor-verify/internal/constants"
	"contractor-verify/pkg/config"
	errs "contractor-verify/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
)

type DB struct {
	conn         *sql.DB
	stmts        map[string]*sql.Stmt
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New creates a database connection with default pool settings.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(15)
	conn.SetConnMaxLifetime(10 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{
		conn:         conn,
		stmts:        make(map[string]*sql.Stmt),
		readTimeout:  constants.DBReadTimeoutDefault,
		writeTimeout: constants.DBWriteTimeoutDefault,
	}

	if err := db.prepareStatements(); err != nil {
		return nil, errs.NewDB("database.New", "failed to prepare statements", err)
	}
	return db, nil
}

// NewWithConfig creates a database connection with custom pool settings.
func NewWithConfig(databaseURL string, cfg *config.Config) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	rt := cfg.DBReadTimeout
	if rt == 0 {
		rt = constants.DBReadTimeoutDefault
	}
	wt := cfg.DBWriteTimeout
	if wt == 0 {
		wt = constants.DBWriteTimeoutDefault
	}

	db := &DB{
		conn:         conn,
		stmts:        make(map[string]*sql.Stmt),
		readTimeout:  rt,
		writeTimeout: wt,
	}

	if err := db.prepareStatements(); err != nil {
		return nil, errs.NewDB("database.NewWithConfig", "failed to prepare statements", err)
	}
	return db, nil
}

// prepareStatements prepares frequently used SQL statements. Only the
// verification hot path is prepared; everything else goes through Conn().
func (db *DB) prepareStatements() error {
	statements := map[string]string{
		"markVerified": `UPDATE contractors
                         SET google_verified = 1, google_verified_at = ?,
                             google_place_id = ?, google_url = ?
                         WHERE id = ?`,
		"insertVerificationHistory": `INSERT INTO contractor_verification_histories
                                      (contractor_id, place_id, score, verified,
                                       canonical_name, canonical_phone, processed_at)
                                      VALUES (?, ?, ?, ?, ?, ?, ?)`,
	}

	for name, query := range statements {
		stmt, err := db.conn.Prepare(query)
		if err != nil {
			return errs.NewDB("database.prepareStatements", fmt.Sprintf("failed to prepare statement %s", name), err)
		}
		db.stmts[name] = stmt
	}
	return nil
}

// Stmt returns a prepared statement by name; nil if not prepared.
func (db *DB) Stmt(name string) *sql.Stmt { return db.stmts[name] }

// Conn exposes the underlying connection pool for ad-hoc queries.
func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) ReadTimeout() time.Duration  { return db.readTimeout }
func (db *DB) WriteTimeout() time.Duration { return db.writeTimeout }

// Ping verifies the connection is alive.
func (db *DB) Ping() error { return db.conn.Ping() }

// Close closes the database connection and prepared statements.
func (db *DB) Close() error {
	for _, stmt := range db.stmts {
		_ = stmt.Close()
	}
	return db.conn.Close()
}
