package askcmder_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	askcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/ask"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

// newOllama answers every chat request with sql.
func newOllama(sql string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"model":"llama3.2","message":{"role":"assistant","content":%q},"done":true}`, sql)
	}))
}

var _ = Describe("Ask command", func() {
	var (
		configDir string
		out       *bytes.Buffer
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	execute := func(server *httptest.Server, args ...string) error {
		cmd := askcmder.NewAskCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .sqlchat/ config directory")
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{
			"--config-dir", configDir,
			"--driver", "sqlite",
			"--database", ":memory:",
			"--provider", "ollama",
			"--base-url", server.URL,
		}, args...))
		return cmd.Execute()
	}

	It("requires a question", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
	})

	It("prints the answer", func() {
		server := newOllama("SELECT 1 AS one")
		defer server.Close()

		Expect(execute(server, "what", "is", "one?")).To(Succeed())
		Expect(out.String()).To(HavePrefix("Generated SQL: SELECT 1 AS one\n\nResults:\n"))
		Expect(out.String()).To(ContainSubstring("one"))
	})

	It("prints JSON with --json", func() {
		server := newOllama("SELECT * FROM nonexistent_table")
		defer server.Close()

		Expect(execute(server, "--json", "show the missing table")).To(Succeed())

		var answer askcmder.Answer
		Expect(json.Unmarshal(out.Bytes(), &answer)).To(Succeed())
		Expect(answer.Question).To(Equal("show the missing table"))
		Expect(answer.Answer.Role).To(Equal(conversation.RoleAssistant))
		Expect(answer.Answer.Content).To(HavePrefix("Generated SQL: SELECT * FROM nonexistent_table\n\nError: "))
		Expect(answer.Answer.Content).To(ContainSubstring("no such table"))
	})

	It("fails on startup errors", func() {
		server := newOllama("SELECT 1")
		defer server.Close()

		Expect(execute(server, "--provider", "mystery", "q")).To(MatchError(ContainSubstring("startup_failure")))
	})
})
