// Package llm provides an OpenAI-compatible chat client for transcript
// rewriting.
//
// # Configuration
//
// Requires api_key, and optionally base_url, model, referer, title, timeout.
// Any provider speaking the chat completions protocol works (OpenAI,
// OpenRouter, DashScope compatible mode, local servers).
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the message content.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON / ExtractJSON: recover JSON from fenced or chatty replies.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty replies, and network
// timeouts with exponential backoff (base 1s, max 10s, up to 4 attempts by
// default). Context cancellation aborts retries immediately. The SDK's own
// retry loop is disabled.
package llm
