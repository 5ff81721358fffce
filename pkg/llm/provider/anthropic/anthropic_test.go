package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sqlchat/pkg/llm"
	"github.com/papercomputeco/sqlchat/pkg/llm/provider"
	"github.com/papercomputeco/sqlchat/pkg/llm/provider/anthropic"
)

var _ = Describe("Anthropic Provider", func() {
	var (
		server   *httptest.Server
		received map[string]any
		headers  http.Header
		status   int
		reply    string
		p        provider.Provider
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		reply = `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5-20251001",
			"content": [{"type": "text", "text": "SELECT COUNT(*) FROM orders;"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 30, "output_tokens": 8}
		}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/messages"))
			headers = r.Header.Clone()

			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())

			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))

		p = anthropic.New("sk-ant-test", server.URL, server.Client())
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns 'anthropic' as its name", func() {
		Expect(p.Name()).To(Equal("anthropic"))
	})

	It("sends the key, version header and a default max_tokens", func() {
		_, err := p.Complete(context.Background(), &llm.ChatRequest{
			Model:       "claude-haiku-4-5-20251001",
			Messages:    []llm.Message{llm.NewTextMessage(llm.RoleUser, "How many orders?")},
			Temperature: llm.Float64(0),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(headers.Get("x-api-key")).To(Equal("sk-ant-test"))
		Expect(headers.Get("anthropic-version")).To(Equal("2023-06-01"))
		Expect(received["max_tokens"]).To(BeNumerically("==", 1024))
		Expect(received).To(HaveKeyWithValue("temperature", BeNumerically("==", 0)))
		Expect(received["messages"]).To(HaveLen(1))
	})

	It("moves system messages to the system field", func() {
		_, err := p.Complete(context.Background(), &llm.ChatRequest{
			Model: "claude-haiku-4-5-20251001",
			Messages: []llm.Message{
				llm.NewTextMessage(llm.RoleSystem, "Only SQL."),
				llm.NewTextMessage(llm.RoleUser, "hi"),
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(received["system"]).To(Equal("Only SQL."))
		Expect(received["messages"]).To(HaveLen(1))
	})

	It("parses text content and usage", func() {
		resp, err := p.Complete(context.Background(), &llm.ChatRequest{Model: "claude-haiku-4-5-20251001"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message.GetText()).To(Equal("SELECT COUNT(*) FROM orders;"))
		Expect(resp.StopReason).To(Equal("end_turn"))
		Expect(resp.Usage.PromptTokens).To(Equal(30))
		Expect(resp.Usage.TotalTokens).To(Equal(38))
	})

	It("returns an APIError with the service message on failure", func() {
		status = http.StatusTooManyRequests
		reply = `{"type": "error", "error": {"type": "rate_limit_error", "message": "Rate limited"}}`

		_, err := p.Complete(context.Background(), &llm.ChatRequest{Model: "claude-haiku-4-5-20251001"})
		var apiErr *llm.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Message).To(Equal("Rate limited"))
	})
})
