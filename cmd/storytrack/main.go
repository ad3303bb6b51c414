// storytrack: User Story Tracker MCP Server
//
// An MCP server that lets any AI coding tool keep a backlog of user
// stories in a JSON file next to the project, move them through their
// lifecycle and reorder what has not been started yet.
//
// Usage:
//
//	storytrack serve     # Start MCP server (stdio transport)
//	storytrack config    # Print the resolved configuration
//	storytrack version   # Print the version
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
