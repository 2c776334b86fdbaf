package main

import (
	"os"

	"github.com/buildeasy/webverse/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
