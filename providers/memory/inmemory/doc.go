// Package inmemory is a mutex-guarded, slice-backed [memory.Provider]. A
// store built with [NewWindowed] keeps only the most recent messages and never
// lets the history begin with a tool answer whose call was dropped.
package inmemory
