package common

type contextKey string

const (
	RequestIDKey      contextKey = "request_id"
	ClientIPKey       contextKey = "client_ip"
	RateLimitKey      contextKey = "rate_limit_decision"
	LatencyContextKey contextKey = "__execution_time"
)
