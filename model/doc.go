// Package model defines the provider neutral interface the engine uses to
// talk to chat models, plus a scripted MockModel for tests and credential
// free runs. Concrete adapters live in the openai and anthropic subpackages.
//
// A Request carries the system instruction, the conversation turns and the
// tool definitions. A Model answers with a single final Response on its
// response channel or an error on its error channel.
package model
