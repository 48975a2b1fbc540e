package claude

var (
	RateLimitErrorOptions   = rateLimitErrorOptions
	ExtractJSONFromResponse = extractJSONFromResponse
)
