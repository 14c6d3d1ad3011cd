// Package main implements a standalone seed script that populates the
// intershop catalog with realistic test products via direct SQL, in batches,
// so a freshly migrated database has something to browse.
//
// Run: go run scripts/seed_products.go
//
//	(from the repo root, or: cd scripts && go run seed_products.go)
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	totalProducts = 1000
	batchSize     = 100
)

// placeholderPNG is a 1x1 transparent PNG served by the item image endpoint
// for seeded products.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dsn() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "intershop"),
		getEnv("POSTGRES_PASSWORD", "intershop_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "intershop"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)
}

// ---------------------------------------------------------------------------
// Product generation
// ---------------------------------------------------------------------------

var adjectives = []string{
	"Classic", "Modern", "Vintage", "Compact", "Deluxe", "Premium",
	"Sturdy", "Lightweight", "Foldable", "Wireless", "Ergonomic", "Portable",
}

var nouns = []string{
	"Backpack", "Desk Lamp", "Water Bottle", "Notebook", "Headphones",
	"Keyboard", "Coffee Mug", "Wall Clock", "Office Chair", "Umbrella",
	"Toolbox", "Bookshelf", "Speaker", "Camera Strap", "Travel Pillow",
}

var materials = []string{
	"oak", "steel", "canvas", "leather", "bamboo", "aluminium", "ceramic",
}

func productTitle(rng *rand.Rand, index int) string {
	adj := adjectives[rng.Intn(len(adjectives))]
	noun := nouns[rng.Intn(len(nouns))]
	return fmt.Sprintf("%s %s #%d", adj, noun, index+1)
}

func productDescription(rng *rand.Rand, title string) string {
	material := materials[rng.Intn(len(materials))]
	return fmt.Sprintf("%s, handmade from %s. Ships within 2 business days.", title, material)
}

// productPrice returns a price in cents between 4.99 and 254.99.
func productPrice(rng *rand.Rand) int64 {
	return int64(rng.Intn(250)+4)*100 + 99
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn())
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	var existing int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM products").Scan(&existing); err != nil {
		log.Fatalf("count products (did migrations run?): %v", err)
	}
	if existing >= totalProducts {
		log.Printf("catalog already has %d products, nothing to do", existing)
		return
	}

	// Fixed seed so re-runs generate the same catalog.
	rng := rand.New(rand.NewSource(42))
	start := time.Now()
	inserted := 0

	for offset := existing; offset < totalProducts; offset += batchSize {
		end := offset + batchSize
		if end > totalProducts {
			end = totalProducts
		}

		batch := make([][]any, 0, end-offset)
		for i := offset; i < end; i++ {
			title := productTitle(rng, i)
			batch = append(batch, []any{
				title,
				productDescription(rng, title),
				placeholderPNG,
				productPrice(rng),
				time.Now().UTC(),
			})
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			log.Fatalf("begin batch tx: %v", err)
		}

		for _, args := range batch {
			_, err := tx.Exec(ctx,
				"INSERT INTO products (title, description, image, price, created_at) VALUES ($1, $2, $3, $4, $5)",
				args...,
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				log.Fatalf("insert product: %v", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			log.Fatalf("commit batch: %v", err)
		}

		inserted += len(batch)
		log.Printf("seeded %d/%d products", existing+inserted, totalProducts)
	}

	log.Printf("done: %d products inserted in %s", inserted, time.Since(start).Round(time.Millisecond))
	log.Printf("note: restart or flush Redis so cached search pages pick up the new catalog")
}
