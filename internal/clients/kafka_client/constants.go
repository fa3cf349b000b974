package kafka_client

import "time"

const (
	MAX_RETRIES      = 5
	RETRY_DELAY      = 2 * time.Second
	READ_TIMEOUT     = 500 * time.Millisecond
	FLUSH_TIMEOUT_MS = 5000
	COMMIT_RETRIES   = 3
	PRODUCE_RETRIES  = 3
)
