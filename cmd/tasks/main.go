// Command tasks is a terminal client for the task API. The sort order chosen
// with "tasks sort" is kept in a state file between invocations.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
