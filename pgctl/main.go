// Command pgctl builds packet graphs from pipeline files and runs them.
package main

import "github.com/sarchlab/packetgraph/pgctl/cmd"

func main() {
	cmd.Execute()
}
