package db

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"bladeshop-be/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.internal",
		DBUser:     "shop",
		DBPassword: "s3cret",
		DBName:     "bladeshop",
		DBPort:     "5433",
	}

	assert.Equal(t,
		"host=db.internal user=shop password=s3cret dbname=bladeshop port=5433 sslmode=disable",
		buildDSN(cfg),
	)
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{}, "no_such_driver")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

// okDriver hands out connections without a backing server, so Ping succeeds.
type okDriver struct{}

func (okDriver) Open(string) (driver.Conn, error) { return okConn{}, nil }

type okConn struct{}

func (okConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (okConn) Close() error                        { return nil }
func (okConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func init() {
	sql.Register("bladeshop_ok", okDriver{})
}

func TestNewDatabase_Success(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBHost: "localhost"}, "bladeshop_ok")
	assert.NoError(t, err)
	assert.NotNil(t, db)
	db.Close()
}
