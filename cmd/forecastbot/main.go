package main

import (
	"os"

	"github.com/Alias1177/ForecastBot/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
