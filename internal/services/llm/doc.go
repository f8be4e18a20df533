// Package llm provides an OpenAI-compatible chat client used for machine
// translation.
//
// The default endpoint is Gemini's OpenAI compatibility layer, so the same
// Google API key that drives transcription and speech synthesis also drives
// translation. Any chat-completions endpoint that honours
// response_format=json_object works.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Translate: translate text into a named language.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.HealthCheck: verify the key and model respond.
//
// # Retry Behaviour
//
// A single attempt is made unless WithRetryMaxAttempts raises it. When retries
// are enabled, HTTP 408/429/5xx responses, empty completions and network
// timeouts back off exponentially and honour Retry-After. Context cancellation
// stops retries immediately.
package llm
