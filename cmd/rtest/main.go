// Command rtest discovers pytest items by parsing Python source
// directly (tree-sitter, no Python interpreter) and dispatches them to
// a host test runner under a configurable distribution policy.
package main

import "os"

func main() {
	os.Exit(Execute())
}
