package queue

type TaskType string

const (
	// TaskTypeExtraction runs one raw feedback item through the extraction pipeline.
	TaskTypeExtraction TaskType = "extraction"
)
