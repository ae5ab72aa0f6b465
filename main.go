package main

import (
	"os"

	"irbackend/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
