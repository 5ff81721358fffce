package schema_test

import (
	"context"
	"errors"
	"regexp"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/errkind"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/schema"
)

var describeColumns = []string{"Field", "Type", "Null", "Key", "Default", "Extra"}

var _ = Describe("Description", func() {
	It("renders tables and columns in order", func() {
		d := schema.Description{
			{Name: "users", Columns: []string{"id", "name"}},
			{Name: "orders", Columns: []string{"id"}},
		}
		Expect(d.String()).To(Equal("Tables: users (id, name), orders (id)"))
	})

	It("renders an empty database", func() {
		Expect(schema.Description{}.String()).To(Equal("Tables: "))
	})
})

var _ = Describe("Inspector", func() {
	var (
		ctx  context.Context
		mock sqlmock.Sqlmock
		conn *database.Conn
	)

	newConn := func(dialect database.Dialect) {
		db, m, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		mock = m

		conn, err = database.New(ctx, db, dialect, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("mysql", func() {
		BeforeEach(func() {
			newConn(database.MySQL)
		})

		It("describes every table with SHOW TABLES and DESCRIBE", func() {
			mock.ExpectQuery("SHOW TABLES").
				WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("users").AddRow("orders"))
			mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `users`")).
				WillReturnRows(sqlmock.NewRows(describeColumns).
					AddRow("id", "int(11)", "NO", "PRI", nil, "auto_increment").
					AddRow("name", "varchar(255)", "YES", "", nil, ""))
			mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `orders`")).
				WillReturnRows(sqlmock.NewRows(describeColumns).
					AddRow("id", "int(11)", "NO", "PRI", nil, "auto_increment"))

			inspector := schema.NewInspector(conn, logger.Nop())
			Expect(inspector.DescribeSchema(ctx)).To(Equal("Tables: users (id, name), orders (id)"))
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})

		It("renders an empty database", func() {
			mock.ExpectQuery("SHOW TABLES").WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}))

			inspector := schema.NewInspector(conn, logger.Nop())
			Expect(inspector.DescribeSchema(ctx)).To(Equal("Tables: "))
		})

		It("returns identical text for two calls against an unchanged database", func() {
			for range 2 {
				mock.ExpectQuery("SHOW TABLES").
					WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("users"))
				mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `users`")).
					WillReturnRows(sqlmock.NewRows(describeColumns).AddRow("id", "int", "NO", "PRI", nil, ""))
			}

			inspector := schema.NewInspector(conn, logger.Nop())
			first := inspector.DescribeSchema(ctx)
			second := inspector.DescribeSchema(ctx)
			Expect(second).To(Equal(first))
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})

		It("returns the driver error text in place of the schema", func() {
			mock.ExpectQuery("SHOW TABLES").
				WillReturnError(errors.New("Error 1142 (42000): SHOW command denied to user 'reporter'"))

			inspector := schema.NewInspector(conn, logger.Nop())
			Expect(inspector.DescribeSchema(ctx)).To(Equal("Error 1142 (42000): SHOW command denied to user 'reporter'"))
		})

		It("reports a schema inspection failure from Describe", func() {
			mock.ExpectQuery("SHOW TABLES").
				WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("users"))
			mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `users`")).WillReturnError(errors.New("connection reset"))

			inspector := schema.NewInspector(conn, logger.Nop())
			_, err := inspector.Describe(ctx)
			Expect(err).To(HaveOccurred())
			Expect(errkind.Is(err, errkind.SchemaInspectionFailure)).To(BeTrue())
		})

		It("quotes table names containing backticks", func() {
			mock.ExpectQuery("SHOW TABLES").
				WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("odd`name"))
			mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `odd``name`")).
				WillReturnRows(sqlmock.NewRows(describeColumns).AddRow("id", "int", "NO", "", nil, ""))

			inspector := schema.NewInspector(conn, logger.Nop())
			Expect(inspector.DescribeSchema(ctx)).To(Equal("Tables: odd`name (id)"))
		})
	})

	Context("postgres", func() {
		BeforeEach(func() {
			newConn(database.Postgres)
		})

		It("reads information_schema in ordinal order", func() {
			mock.ExpectQuery("FROM information_schema.tables").
				WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("customers"))
			mock.ExpectQuery("FROM information_schema.columns").
				WithArgs("customers").
				WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("email"))

			inspector := schema.NewInspector(conn, logger.Nop())
			desc, err := inspector.Describe(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(desc).To(Equal(schema.Description{{Name: "customers", Columns: []string{"id", "email"}}}))
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("sqlite", func() {
		It("reads sqlite_master and table_info from a live database", func() {
			live, err := database.Open(ctx, database.Options{Driver: "sqlite", Name: ":memory:"}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			defer live.Close()

			Expect(live.Run(ctx, func(q database.Queryer) error {
				for _, stmt := range []string{
					"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
					"CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER, total REAL)",
				} {
					rows, err := q.QueryContext(ctx, stmt)
					if err != nil {
						return err
					}
					for rows.Next() {
					}
					if err := rows.Close(); err != nil {
						return err
					}
				}
				return nil
			})).To(Succeed())

			inspector := schema.NewInspector(live, logger.Nop())
			Expect(inspector.DescribeSchema(ctx)).To(Equal("Tables: orders (id, user_id, total), users (id, name)"))
		})
	})
})
