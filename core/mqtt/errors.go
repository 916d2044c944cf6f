package mqtt

import "errors"

// ErrNoTopic is returned when publishing without a configured prediction topic.
var ErrNoTopic = errors.New("prediction topic not configured")
