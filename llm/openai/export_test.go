package openai

// Export for testing
var RateLimitErrorOptions = rateLimitErrorOptions
