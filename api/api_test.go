package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sqlchat/api/sessions"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
	"github.com/papercomputeco/sqlchat/pkg/executor"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/metrics"
	"github.com/papercomputeco/sqlchat/pkg/schema"
)

// fakeDB answers every question with the SQL and result it is given.
type fakeDB struct {
	desc      schema.Description
	schemaErr error
	sql       string
	result    executor.Result
}

func (f *fakeDB) Describe(context.Context) (schema.Description, error) { return f.desc, f.schemaErr }

func (f *fakeDB) DescribeSchema(context.Context) string { return f.desc.String() }

func (f *fakeDB) Translate(context.Context, string, string) (string, error) { return f.sql, nil }

func (f *fakeDB) Execute(context.Context, string) executor.Result { return f.result }

type factory struct {
	db        *fakeDB
	observers []conversation.Observer
}

func (f factory) NewSession(opts ...conversation.Option) *conversation.Session {
	opts = append(opts, conversation.WithObservers(f.observers...))
	return conversation.NewSession(f.db, f.db, f.db, opts...)
}

func decode[T any](resp *http.Response) T {
	defer resp.Body.Close()
	var v T
	Expect(json.NewDecoder(resp.Body).Decode(&v)).To(Succeed())
	return v
}

var _ = Describe("Server", func() {
	var (
		db       *fakeDB
		m        *metrics.Metrics
		registry *sessions.Registry
		server   *Server
	)

	BeforeEach(func() {
		db = &fakeDB{
			desc: schema.Description{{Name: "users", Columns: []string{"id", "name"}}},
			sql:  "SELECT COUNT(*) FROM users",
			result: executor.Result{Success: &executor.Success{
				Columns: []string{"COUNT(*)"},
				Rows:    [][]any{{int64(42)}},
			}},
		}
		m = metrics.New()
		registry = sessions.NewRegistry(factory{db: db, observers: []conversation.Observer{m}}, sessions.WithGauge(m))
		server = NewServer(Config{ListenAddr: ":0", MetricsHandler: m.Handler()}, registry, db, logger.Nop())
	})

	do := func(method, path, body string) *http.Response {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, r)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	createSession := func() SessionResponse {
		resp := do(http.MethodPost, "/v1/sessions", "")
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		return decode[SessionResponse](resp)
	}

	It("answers ping", func() {
		resp := do(http.MethodGet, "/ping", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(decode[string](resp)).To(Equal("pong"))
	})

	Describe("sessions", func() {
		It("creates a session holding the greeting", func() {
			created := createSession()
			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.Transcript).To(HaveLen(1))
			Expect(created.Transcript[0].Role).To(Equal(conversation.RoleAssistant))
			Expect(created.Transcript[0].Content).To(Equal(conversation.Greeting))
		})

		It("gets, lists and deletes sessions", func() {
			created := createSession()

			resp := do(http.MethodGet, "/v1/sessions/"+created.ID, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decode[SessionResponse](resp).ID).To(Equal(created.ID))

			resp = do(http.MethodGet, "/v1/sessions", "")
			list := decode[struct {
				Count    int              `json:"count"`
				Sessions []SessionSummary `json:"sessions"`
			}](resp)
			Expect(list.Count).To(Equal(1))
			Expect(list.Sessions[0].Turns).To(Equal(1))

			resp = do(http.MethodDelete, "/v1/sessions/"+created.ID, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			resp = do(http.MethodGet, "/v1/sessions/"+created.ID, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			resp = do(http.MethodDelete, "/v1/sessions/"+created.ID, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("questions", func() {
		It("returns the assistant turn with its payload", func() {
			created := createSession()

			resp := do(http.MethodPost, "/v1/sessions/"+created.ID+"/questions", `{"question":"How many users are there?"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			turn := decode[conversation.Turn](resp)
			Expect(turn.Role).To(Equal(conversation.RoleAssistant))
			Expect(turn.Content).To(Equal("Generated SQL: SELECT COUNT(*) FROM users\n\nResults:"))
			Expect(turn.Payload).NotTo(BeNil())
			Expect(turn.Payload.Columns).To(Equal([]string{"COUNT(*)"}))
			Expect(turn.Payload.Rows).To(Equal([][]any{{float64(42)}}))

			resp = do(http.MethodGet, "/v1/sessions/"+created.ID, "")
			Expect(decode[SessionResponse](resp).Transcript).To(HaveLen(3))
		})

		It("returns execution errors as ordinary answers", func() {
			db.sql = "SELECT * FROM nonexistent_table"
			db.result = executor.Result{Failure: &executor.Failure{Message: "Table 'shop.nonexistent_table' doesn't exist"}}
			created := createSession()

			resp := do(http.MethodPost, "/v1/sessions/"+created.ID+"/questions", `{"question":"show the missing table"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decode[conversation.Turn](resp).Content).To(Equal(
				"Generated SQL: SELECT * FROM nonexistent_table\n\nError: Table 'shop.nonexistent_table' doesn't exist"))
		})

		It("rejects unknown sessions", func() {
			resp := do(http.MethodPost, "/v1/sessions/nope/questions", `{"question":"q"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("rejects empty questions", func() {
			created := createSession()
			resp := do(http.MethodPost, "/v1/sessions/"+created.ID+"/questions", `{"question":""}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(decode[ErrorResponse](resp).Error).To(Equal("question is required"))
		})

		It("rejects malformed bodies", func() {
			created := createSession()
			resp := do(http.MethodPost, "/v1/sessions/"+created.ID+"/questions", `{"question":`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("schema", func() {
		It("returns the rendered and structured schema", func() {
			resp := do(http.MethodGet, "/v1/schema", "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body := decode[SchemaResponse](resp)
			Expect(body.Schema).To(Equal("Tables: users (id, name)"))
			Expect(body.Tables).To(Equal([]schema.Table{{Name: "users", Columns: []string{"id", "name"}}}))
		})

		It("reports inspection failures", func() {
			db.schemaErr = errors.New("access denied for user")
			resp := do(http.MethodGet, "/v1/schema", "")
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(decode[ErrorResponse](resp).Error).To(ContainSubstring("access denied"))
		})
	})

	It("serves metrics", func() {
		created := createSession()
		do(http.MethodPost, "/v1/sessions/"+created.ID+"/questions", `{"question":"q"}`)

		resp := do(http.MethodGet, "/metrics", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`sqlchat_questions_total{outcome="rows"} 1`))
		Expect(string(body)).To(ContainSubstring("sqlchat_live_sessions 1"))
	})
})
