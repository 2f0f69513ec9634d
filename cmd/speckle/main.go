// Package main is the speckle command itself.
package main

import (
	"log"
	"os"

	"github.com/depthkit/depthkit/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
