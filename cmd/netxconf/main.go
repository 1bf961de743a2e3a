package main

import (
	"github.com/livp123/netxconf/cmd/netxconf/commands"
)

func main() {
	commands.Execute()
}
