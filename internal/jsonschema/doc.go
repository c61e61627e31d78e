// Package jsonschema generates the JSON Schema advertised to language models
// for tool parameters.
//
// The main entry point is [GenerateJSONSchema], which derives a [Schema] from a
// Go type T via reflection. Struct tags control naming (`json`) and the
// description, enum values and required flag (`jsonschema`).
package jsonschema
