// Package cli implements the interactive terminal client: a small REPL over
// the identity and chat services, with the live subscription rendering
// incoming snapshots between prompts.
package cli
