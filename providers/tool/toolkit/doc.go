// Package toolkit assembles the assistant's capabilities (calculator, web
// search and Wikipedia) from one configuration, in the order the model sees
// them.
package toolkit
