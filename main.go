// Package main is the entry point of the streamio side-car.
package main

import (
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/streamio/streamio/cmd"
	"github.com/streamio/streamio/config"
)

func main() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	lo.Must0(config.Setup())
	cmd.Execute()
}
