// Package tools defines the tool contract, the registry and the dispatcher.
//
// Includes:
//   - Definition: schema (name, description, parameters) plus handler.
//   - GenerateSchema[T](): derive parameters from a Go input struct.
//   - Registry: name -> definition, schemas in registration order.
//   - Dispatcher: validates arguments and turns every failure into a Result.
//   - Built-ins: list_files, read_file, multiply_numbers, terminate.
package tools
