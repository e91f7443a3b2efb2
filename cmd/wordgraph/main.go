package main

import "github.com/gyaneshwarpardhi/wordgraph/cmd/wordgraph/commands"

func main() {
	commands.Execute()
}
