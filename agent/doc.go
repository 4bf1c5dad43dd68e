// Package agent describes what a single conversational invocation runs with
// (model, tools, system instruction) and how that bundle is built.
//
// A Factory is asked for a fresh Agent on every invocation so configuration
// problems such as a missing API key surface per request instead of at
// startup. ConfigFactory is the configuration driven implementation; tests
// usually reach for FactoryFunc.
package agent
