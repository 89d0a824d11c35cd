package main

import (
	"context"
	"os"

	"budgetly/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
