// Package openai is an [ai.Provider] for OpenAI-compatible chat completion
// APIs. [New] targets DeepSeek (https://api.deepseek.com/v1, deepseek-chat)
// and reads DEEPSEEK_API_KEY, DEEPSEEK_BASE_URL and DEEPSEEK_MODEL; the
// builder methods override them. Only the non-streaming /chat/completions
// endpoint is used.
package openai
