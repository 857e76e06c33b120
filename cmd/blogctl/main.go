package main

import (
	_ "time/tzdata"

	"github.com/blogging-tool/cmd/blogctl/commands"
)

func main() {
	commands.Execute()
}
