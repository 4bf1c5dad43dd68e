// Package history houses concrete implementations of core.History.
//
// Only a volatile in-memory store is provided: the conversation log lives
// exactly as long as the process. Durable backends can be added as
// sub-packages without changing any calling code; only the wiring layer
// decides which implementation to instantiate.
package history
