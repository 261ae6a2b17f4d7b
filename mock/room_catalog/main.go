// Command room_catalog serves a static room inventory for local runs.
package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"math/rand/v2"
	"time"

	"github.com/gofiber/fiber/v2"
)

//go:embed rooms.json
var roomsJSON []byte

type room struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	MaxOccupancy int     `json:"max_occupancy"`
	BasePrice    float64 `json:"base_price"`
	Status       string  `json:"status"`
}

func main() {
	var inventory struct {
		Rooms []room `json:"rooms"`
	}
	if err := json.Unmarshal(roomsJSON, &inventory); err != nil {
		log.Fatalf("[Room Catalog] invalid rooms.json: %v", err)
	}

	byID := make(map[string]room, len(inventory.Rooms))
	for _, r := range inventory.Rooms {
		byID[r.ID] = r
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// Simulate network latency (20-100ms)
	app.Use(func(c *fiber.Ctx) error {
		time.Sleep(time.Duration(20+rand.IntN(80)) * time.Millisecond)
		return c.Next()
	})

	app.Get("/api/rooms", func(c *fiber.Ctx) error {
		status := c.Query("status")
		rooms := make([]room, 0, len(inventory.Rooms))
		for _, r := range inventory.Rooms {
			if status == "" || r.Status == status {
				rooms = append(rooms, r)
			}
		}
		return c.JSON(fiber.Map{"rooms": rooms})
	})

	app.Get("/api/rooms/:id", func(c *fiber.Ctx) error {
		r, ok := byID[c.Params("id")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.JSON(r)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	log.Println("Mock room catalog running on :8081")
	log.Fatal(app.Listen(":8081"))
}
