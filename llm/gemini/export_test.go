package gemini

var RateLimitErrorOptions = rateLimitErrorOptions
