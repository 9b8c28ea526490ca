//go:build tinygo

package main

import (
	"kestrel/app"
	"kestrel/hal"
)

func main() {
	app.Run(hal.New(), app.Config{})
}
