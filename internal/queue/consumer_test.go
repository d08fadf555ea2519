package queue

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("ParseMessage", func() {
	It("parses a full extraction message", func() {
		raw := redis.XMessage{ID: "1700000000000-0", Values: map[string]any{
			"task_type":   "extraction",
			"raw_item_id": "1790123456789012345",
			"attempt":     "2",
			"source_type": "email",
			"trace_id":    "4bf92f3577b34da6a3ce929d0e0e4736",
			"last_error":  "classifier: 503",
		}}

		msg, err := ParseMessage(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1700000000000-0"))
		Expect(msg.TaskType).To(Equal(TaskTypeExtraction))
		Expect(msg.RawItemID).To(Equal(int64(1790123456789012345)))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.IsRetry()).To(BeTrue())
		Expect(msg.SourceType).To(Equal("email"))
		Expect(msg.TraceID).To(Equal("4bf92f3577b34da6a3ce929d0e0e4736"))
		Expect(msg.LastError).To(Equal("classifier: 503"))
	})

	It("defaults the task type and attempt", func() {
		msg, err := ParseMessage(redis.XMessage{ID: "1-0", Values: map[string]any{"raw_item_id": "42"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TaskType).To(Equal(TaskTypeExtraction))
		Expect(msg.Attempt).To(Equal(1))
		Expect(msg.IsRetry()).To(BeFalse())
	})

	DescribeTable("rejects malformed messages",
		func(values map[string]any, wantErr string) {
			_, err := ParseMessage(redis.XMessage{ID: "1-0", Values: values})
			Expect(err).To(MatchError(ContainSubstring(wantErr)))
		},
		Entry("missing raw item", map[string]any{"attempt": "1"}, "missing raw_item_id"),
		Entry("non numeric raw item", map[string]any{"raw_item_id": "abc"}, "parsing raw_item_id"),
		Entry("zero raw item", map[string]any{"raw_item_id": "0"}, "invalid raw_item_id"),
		Entry("bad attempt", map[string]any{"raw_item_id": "1", "attempt": "x"}, "parsing attempt"),
		Entry("unknown task", map[string]any{"raw_item_id": "1", "task_type": "issue_event"}, "unknown task_type"),
	)
})

var _ = Describe("messageValues", func() {
	It("round trips through ParseMessage with the new attempt", func() {
		original := Message{
			ID:         "5-0",
			TaskType:   TaskTypeExtraction,
			RawItemID:  77,
			SourceType: "api",
			Attempt:    1,
			TraceID:    "abc",
		}

		values := messageValues(original, original.Attempt+1)
		Expect(values).NotTo(HaveKey("last_error"))

		parsed, err := ParseMessage(redis.XMessage{ID: "6-0", Values: stringify(values)})
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.RawItemID).To(Equal(int64(77)))
		Expect(parsed.Attempt).To(Equal(2))
		Expect(parsed.SourceType).To(Equal("api"))
		Expect(parsed.TraceID).To(Equal("abc"))
	})

	It("omits empty optional fields", func() {
		values := messageValues(Message{RawItemID: 1}, 1)
		Expect(values).To(HaveKeyWithValue("task_type", "extraction"))
		Expect(values).NotTo(HaveKey("trace_id"))
		Expect(values).NotTo(HaveKey("source_type"))
	})
})

// stringify mimics Redis returning every field value as a string.
func stringify(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = fmt.Sprint(v)
	}
	return out
}
