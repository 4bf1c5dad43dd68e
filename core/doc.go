// Package core provides the foundational domain types shared by every layer of
// agentkit:
//
//   - Turns (one attributed message in the conversation log)
//   - Parts (the closed set of content segments a turn carries)
//   - InvocationResult (what one run of the agent loop produced)
//   - History (the ordered, append-only conversation log contract)
//
// Concrete stores, the agent loop and the HTTP boundary live in their own
// packages and depend on these types, never the other way around.
package core
