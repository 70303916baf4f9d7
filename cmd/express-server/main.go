// Package main is the entry point for express-server.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kart-io/express-plugin/internal/expressd"
)

func main() {
	expressd.NewApp().Run()
}
