package main

import (
	"log"

	"github.com/MrSnakeDoc/bookhub/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ bookhub failed to start: %v", err)
	}
}
