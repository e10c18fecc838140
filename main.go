package main

import (
	"os"

	"github.com/nordbess/bessopt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
