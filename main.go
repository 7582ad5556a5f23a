// ABOUTME: Entry point for the notecast command
// ABOUTME: Hands off to the cobra command tree in internal/cli
package main

import "github.com/harperreed/notecast/internal/cli"

func main() {
	cli.Execute()
}
