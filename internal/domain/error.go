package domain

import "errors"

var (
	ErrNotFound        = errors.New("item not found")
	ErrNotYetPublished = errors.New("no record published yet")
)
