// Package memory holds the conversation log of a session.
//
// Model:
//   - The log is append-only: entries are validated on Append and never
//     changed or removed afterwards.
//   - A tool-role entry must answer a call of the nearest preceding assistant
//     entry, with only tool-role entries in between.
//   - Nothing is persisted; a log lives as long as its session.
package memory
