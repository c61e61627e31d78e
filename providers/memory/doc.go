// Package memory defines the conversation history interface used by the
// agent loop. The in-process implementation lives in memory/inmemory.
package memory
