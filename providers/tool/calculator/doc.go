// Package calculator is the arithmetic capability. Expressions are lexed
// against a whitelist (numbers, + - * / % ** parentheses and a handful of
// functions), parsed into a tree by recursive descent, and only then
// evaluated in float64. Nothing outside the grammar is ever executed.
//
// [Evaluate] is the text contract used by the agent; [Calculate] and [Calc]
// return typed results and errors wrapping the sentinels of package tool.
package calculator
