// Command routingctl is the operator CLI for the routing engine: it can
// serve the HTTP API, trigger a pipeline run, or report graph statistics,
// all from one binary.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
