package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/contextforge/ragchat/ragservice"
)

func main() {
	// Local development convenience; absence of a .env file is not an error.
	_ = godotenv.Load()

	if err := ragservice.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
