package main

import (
	"github.com/agentmart/agentmart/cmd/agentmart/cmd"
)

func main() {
	cmd.Execute()
}
