package main

import (
	"github.com/mklnz/descpipe/cmd"
)

func main() {
	cmd.Execute()
}
