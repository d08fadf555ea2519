package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/openai/openai-go"

	"github.com/QuackbackIO/quackback-sub007/common/llm"
)

type verdict struct {
	Actionable bool   `json:"actionable" jsonschema:"description=Whether the text is actionable product feedback"`
	Rationale  string `json:"rationale"`
}

var _ = Describe("New", func() {
	It("requires an API key", func() {
		_, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "cohere", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	DescribeTable("picks the provider and default model",
		func(provider, wantModel string) {
			client, err := llm.New(llm.Config{Provider: provider, APIKey: "k"})
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Model()).To(Equal(wantModel))
		},
		Entry("empty provider defaults to openai", "", "gpt-4o-mini"),
		Entry("openai", llm.ProviderOpenAI, "gpt-4o-mini"),
		Entry("anthropic", llm.ProviderAnthropic, "claude-haiku-4-5"),
	)
})

var _ = Describe("GenerateSchema", func() {
	It("reflects an inline object schema without additional properties", func() {
		raw, err := json.Marshal(llm.GenerateSchema[verdict]())
		Expect(err).NotTo(HaveOccurred())

		var schema map[string]any
		Expect(json.Unmarshal(raw, &schema)).To(Succeed())
		Expect(schema).To(HaveKeyWithValue("type", "object"))
		Expect(schema).To(HaveKeyWithValue("additionalProperties", false))
		Expect(schema).NotTo(HaveKey("$defs"))
		Expect(schema["properties"]).To(HaveKey("actionable"))
		Expect(schema["required"]).To(ConsistOf("actionable", "rationale"))
	})
})

var _ = Describe("NewEmbeddingClient", func() {
	It("requires an API key", func() {
		_, err := llm.NewEmbeddingClient(llm.EmbeddingConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("defaults to 1536 dimensions", func() {
		client, err := llm.NewEmbeddingClient(llm.EmbeddingConfig{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Dimensions()).To(Equal(1536))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	DescribeTable("classifies provider errors",
		func(err error, want bool) {
			Expect(llm.IsRetryable(ctx, err)).To(Equal(want))
		},
		Entry("nil", nil, false),
		Entry("cancelled", fmt.Errorf("call: %w", context.Canceled), false),
		Entry("deadline exceeded", fmt.Errorf("call: %w", context.DeadlineExceeded), true),
		Entry("openai 429", &openai.Error{StatusCode: 429}, true),
		Entry("openai 503", &openai.Error{StatusCode: 503}, true),
		Entry("openai 400", &openai.Error{StatusCode: 400}, false),
		Entry("openai 401", &openai.Error{StatusCode: 401}, false),
		Entry("anthropic 529", &anthropic.Error{StatusCode: 529}, true),
		Entry("anthropic 408", &anthropic.Error{StatusCode: 408}, true),
		Entry("anthropic 404", &anthropic.Error{StatusCode: 404}, false),
		Entry("plain network error", errors.New("connection reset by peer"), true),
	)
})
