package database

import (
	"errors"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// Options are the connection settings for Open. A non-empty DSN is passed to
// the driver verbatim and the discrete fields are ignored.
type Options struct {
	Driver   string
	Host     string
	Port     uint
	User     string
	Password string
	Name     string
	DSN      string
}

// BuildDSN renders the data source name for the dialect from opts.
func BuildDSN(dialect Dialect, opts Options) (string, error) {
	if opts.DSN != "" {
		return opts.DSN, nil
	}

	switch dialect {
	case Postgres:
		u := &url.URL{
			Scheme: "postgres",
			Host:   hostPort(opts.Host, opts.Port),
			Path:   "/" + opts.Name,
		}
		if opts.User != "" {
			if opts.Password != "" {
				u.User = url.UserPassword(opts.User, opts.Password)
			} else {
				u.User = url.User(opts.User)
			}
		}
		return u.String(), nil

	case SQLite:
		if opts.Name == "" {
			return "", errors.New("sqlite requires a database file name")
		}
		return opts.Name, nil

	default:
		cfg := mysql.NewConfig()
		cfg.User = opts.User
		cfg.Passwd = opts.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort(opts.Host, opts.Port)
		cfg.DBName = opts.Name
		return cfg.FormatDSN(), nil
	}
}

func hostPort(host string, port uint) string {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		return host
	}
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}
