package main

import (
	"github.com/Sternrassler/tweeter-client/cmd/tweeter/commands"
)

var version = "dev"

func main() {
	commands.Execute(version)
}
