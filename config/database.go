package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/migrations"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver name. The accepted DB_DRIVER values
// are the names go-sql-driver/mysql, lib/pq and modernc.org/sqlite register.
func (d DatabaseConfig) DriverName() string {
	return d.Driver
}

// Dialect is the goose dialect and the migrations directory for the driver.
func (d DatabaseConfig) Dialect() string {
	return d.Driver
}

// DSN builds the connection string. DATABASE_URL wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" && d.Driver != "mysql" {
		return d.URL
	}

	switch d.Driver {
	case "mysql":
		var mc *mysql.Config
		if d.URL != "" {
			parsed, err := mysql.ParseDSN(d.URL)
			if err != nil {
				return d.URL
			}
			mc = parsed
		} else {
			mc = mysql.NewConfig()
			mc.Net = "tcp"
			mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(portOr(d.Port, 3306)))
			mc.User = d.User
			mc.Passwd = d.Password
			mc.DBName = d.Name
		}
		// Bound every round trip on the client side; a stalled server fails the call.
		timeout := d.QueryTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Timeout = timeout
		mc.ReadTimeout = timeout
		mc.WriteTimeout = timeout
		return mc.FormatDSN()
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   net.JoinHostPort(d.Host, strconv.Itoa(portOr(d.Port, 5432))),
			Path:   "/" + d.Name,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		q.Set("connect_timeout", strconv.Itoa(int(d.QueryTimeout.Seconds())))
		u.RawQuery = q.Encode()
		return u.String()
	default:
		return d.Name
	}
}

func portOr(p, def int) int {
	if p == 0 {
		return def
	}
	return p
}

// OpenDB connects, configures the pool and pings. The caller owns the handle
// and closes it at shutdown.
func OpenDB(ctx context.Context, d DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(d.DriverName(), d.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver, err)
	}

	maxOpen := d.MaxOpenConns
	if d.Driver == "sqlite" {
		// one writer at a time; avoids SQLITE_BUSY inside transactions
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(d.MaxIdleConns)
	db.SetConnMaxLifetime(d.ConnMaxLifetime)
	db.SetConnMaxIdleTime(d.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Driver, err)
	}

	logger.Get().Info("Database connected",
		logger.String("driver", d.Driver),
		logger.Int("max_open", maxOpen),
		logger.Int("max_idle", d.MaxIdleConns),
	)
	return db, nil
}

// Migrate runs the embedded goose migrations for the given dialect.
// command is one of up, down, status.
func Migrate(ctx context.Context, db *sqlx.DB, dialect, command string) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(gooseDialect(dialect)); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db.DB, dialect)
	case "down":
		return goose.DownContext(ctx, db.DB, dialect)
	case "status":
		return goose.StatusContext(ctx, db.DB, dialect)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// gooseDialect maps a driver to goose's dialect name; goose calls sqlite "sqlite3".
func gooseDialect(driver string) string {
	if driver == "sqlite" {
		return "sqlite3"
	}
	return driver
}
