package main

import "github.com/agentic-research/ifcgraph/cmd"

func main() {
	cmd.Execute()
}
