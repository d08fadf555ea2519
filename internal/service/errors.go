package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSourceNotFound     = errors.New("feedback source not found")
	ErrSourceDisabled     = errors.New("feedback source is disabled")
	ErrRawItemNotFound    = errors.New("raw feedback item not found")
	ErrNotResubmittable   = errors.New("raw feedback item is not failed")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrSuggestionResolved = errors.New("suggestion already resolved")
	ErrPostNotFound       = errors.New("post not found")
)
