package main

import (
	"os"

	"webhook-notifier/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}
