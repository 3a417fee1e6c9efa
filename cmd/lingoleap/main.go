package main

import (
	"context"
	"os"

	"github.com/lingoleap/learning-api/cmd/lingoleap/commands"
)

func main() {
	if err := commands.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
