package main

import (
	"os"

	"gigmap.app/gigmap/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
