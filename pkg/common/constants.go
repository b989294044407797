package common

const (
	RequestIDHeader          = "X-Request-ID"
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RetryAfterHeader         = "Retry-After"

	RateLimitedCode = "rate_limited"
)
