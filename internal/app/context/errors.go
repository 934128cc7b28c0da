package context

import "errors"

// ErrCompleted is returned by Do after Complete.
var ErrCompleted = errors.New("request context already completed")
