package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	for _, envFile := range []string{
		".env",
		"../../.env",
		"../../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
