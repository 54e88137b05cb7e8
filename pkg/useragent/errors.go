package useragent

import "errors"

var (
	// ErrEmptyUserAgent is returned when the User-Agent string is empty or whitespace.
	ErrEmptyUserAgent = errors.New("empty user agent")
)
