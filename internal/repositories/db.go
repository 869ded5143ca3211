package repositories

import (
	"database/sql"
	"errors"

	intconfig "backoffice/internal/config"
	"backoffice/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var errNoDB = domain.InternalError{Msg: "database not connected"}

// sqlxDB wraps conn (or the shared connection when nil) for struct scanning.
func sqlxDB(conn *sql.DB) (*sqlx.DB, error) {
	if conn == nil {
		conn = intconfig.DB
	}
	if conn == nil {
		return nil, errNoDB
	}
	return sqlx.NewDb(conn, "mysql"), nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
