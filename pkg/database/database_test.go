package database_test

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/errkind"
	"github.com/papercomputeco/sqlchat/pkg/logger"
)

var _ = Describe("ParseDialect", func() {
	DescribeTable("maps driver names",
		func(driver string, expected database.Dialect) {
			d, err := database.ParseDialect(driver)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(expected))
		},
		Entry("empty defaults to mysql", "", database.MySQL),
		Entry("mariadb", "MariaDB", database.MySQL),
		Entry("postgresql", "postgresql", database.Postgres),
		Entry("pgx", "pgx", database.Postgres),
		Entry("sqlite3", "sqlite3", database.SQLite),
	)

	It("rejects unknown drivers", func() {
		_, err := database.ParseDialect("oracle")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported database driver"))
	})

	It("names the registered driver and the display dialect", func() {
		Expect(database.Postgres.DriverName()).To(Equal("pgx"))
		Expect(database.SQLite.DriverName()).To(Equal("sqlite3"))
		Expect(database.MySQL.DisplayName()).To(Equal("MariaDB"))
	})
})

var _ = Describe("BuildDSN", func() {
	It("passes an explicit DSN through", func() {
		dsn, err := database.BuildDSN(database.MySQL, database.Options{DSN: "root@tcp(db:3306)/shop", Host: "ignored"})
		Expect(err).NotTo(HaveOccurred())
		Expect(dsn).To(Equal("root@tcp(db:3306)/shop"))
	})

	It("builds a mysql DSN", func() {
		dsn, err := database.BuildDSN(database.MySQL, database.Options{
			Host: "db.internal", Port: 3306, User: "reporter", Password: "s3cret", Name: "shop",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(dsn).To(HavePrefix("reporter:s3cret@tcp(db.internal:3306)/shop"))
	})

	It("builds a postgres URL", func() {
		dsn, err := database.BuildDSN(database.Postgres, database.Options{
			Host: "pg", Port: 5432, User: "app", Password: "p@ss", Name: "shop",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(dsn).To(Equal("postgres://app:p%40ss@pg:5432/shop"))
	})

	It("requires a sqlite file name", func() {
		_, err := database.BuildDSN(database.SQLite, database.Options{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Conn", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("runs statements on the pinned connection", func() {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		Expect(err).NotTo(HaveOccurred())

		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

		conn, err := database.New(ctx, db, database.MySQL, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(conn.Dialect()).To(Equal(database.MySQL))

		var got int64
		err = conn.Run(ctx, func(q database.Queryer) error {
			rows, err := q.QueryContext(ctx, "SELECT 1")
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				if err := rows.Scan(&got); err != nil {
					return err
				}
			}
			return rows.Err()
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(int64(1)))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("propagates the callback error", func() {
		db, _, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())

		conn, err := database.New(ctx, db, database.Postgres, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		boom := errors.New("boom")
		Expect(conn.Run(ctx, func(database.Queryer) error { return boom })).To(MatchError(boom))
	})

	It("refuses to run after Close", func() {
		db, mock, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		mock.ExpectClose()

		conn, err := database.New(ctx, db, database.MySQL, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(conn.Close()).To(Succeed())

		err = conn.Run(ctx, func(database.Queryer) error { return nil })
		Expect(err).To(MatchError(sql.ErrConnDone))
		Expect(conn.Close()).To(Succeed())
	})
})

var _ = Describe("Open", func() {
	It("opens an in-memory sqlite database", func() {
		conn, err := database.Open(context.Background(), database.Options{Driver: "sqlite", Name: ":memory:"}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Expect(conn.Dialect()).To(Equal(database.SQLite))
		Expect(conn.Ping(context.Background())).To(Succeed())
	})

	It("fails with a startup failure for an unknown driver", func() {
		_, err := database.Open(context.Background(), database.Options{Driver: "oracle"}, logger.Nop())
		Expect(err).To(HaveOccurred())
		Expect(errkind.Is(err, errkind.StartupFailure)).To(BeTrue())
	})

	It("fails with a startup failure when the server is unreachable", func() {
		_, err := database.Open(context.Background(), database.Options{
			Driver: "mysql", Host: "127.0.0.1", Port: 1, User: "root", Name: "shop",
		}, logger.Nop())
		Expect(err).To(HaveOccurred())
		Expect(errkind.Is(err, errkind.StartupFailure)).To(BeTrue())
	})
})
