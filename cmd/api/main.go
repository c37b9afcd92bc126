package main

import (
	"fmt"
	"os"

	"github.com/metinatakli/cinema-ticket-inventory/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "inventory service stopped: %v\n", err)
		os.Exit(1)
	}
}
