package model_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

var _ = Describe("ParseEnvelope", func() {
	DescribeTable("reads only the typed keys",
		func(raw string, want model.Envelope) {
			Expect(model.ParseEnvelope(json.RawMessage(raw))).To(Equal(want))
		},
		Entry("empty", "", model.Envelope{}),
		Entry("not an object", `["a"]`, model.Envelope{}),
		Entry("malformed", `{"boardHint":`, model.Envelope{}),
		Entry("all keys",
			`{"boardHint":" Integrations ","locale":"de-DE","url":"https://app.example.com/settings","plan":"pro"}`,
			model.Envelope{BoardHint: "integrations", Locale: "de-DE", URL: "https://app.example.com/settings"}),
		Entry("wrong types ignored per key",
			`{"boardHint":42,"locale":"fr"}`,
			model.Envelope{Locale: "fr"}),
	)
})

var _ = Describe("RawFeedbackItem.Content", func() {
	subject := "Export to CSV"

	It("joins subject and body", func() {
		item := model.RawFeedbackItem{Subject: &subject, Body: "Please add a CSV export for reports."}
		Expect(item.Content()).To(Equal("Export to CSV\n\nPlease add a CSV export for reports."))
	})

	It("uses the body alone when there is no subject", func() {
		item := model.RawFeedbackItem{Body: "just the body"}
		Expect(item.Content()).To(Equal("just the body"))
	})

	It("uses the subject alone when the body is empty", func() {
		item := model.RawFeedbackItem{Subject: &subject}
		Expect(item.Content()).To(Equal(subject))
	})
})

var _ = Describe("enums", func() {
	It("validates source types", func() {
		Expect(model.SourceTypeEmail.Valid()).To(BeTrue())
		Expect(model.SourceType("slack").Valid()).To(BeFalse())
	})

	It("validates suggestion types and statuses", func() {
		Expect(model.SuggestionTypeMergePost.Valid()).To(BeTrue())
		Expect(model.SuggestionType("split_post").Valid()).To(BeFalse())
		Expect(model.SuggestionStatusDismissed.Valid()).To(BeTrue())
		Expect(model.SuggestionStatus("archived").Valid()).To(BeFalse())
	})

	It("treats completed and failed as terminal", func() {
		Expect(model.ProcessingStateCompleted.Terminal()).To(BeTrue())
		Expect(model.ProcessingStateFailed.Terminal()).To(BeTrue())
		Expect(model.ProcessingStateExtracting.Terminal()).To(BeFalse())
	})
})
