// Package leakhound provides the command-line interface for the leakhound
// scanner. It configures subcommands (scan, review, serve, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/leakhound/leakhound/cmd/leakhound"
//	func main() { leakhound.Execute() }
package leakhound
