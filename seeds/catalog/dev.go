package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// devAPIKey is the well-known key local development and the e2e suite
// authenticate with. Never seed production with this.
const devAPIKey = "cat_dev_e2e_test_key_00000000"

const devAPIKeyID = "key_catalog_dev_000000000001"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding catalog database...")

	hash := sha256.Sum256([]byte(devAPIKey))
	keyHash := hex.EncodeToString(hash[:])

	fmt.Println("  Inserting dev API key...")
	_, err = pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash, revoked_at = NULL`,
		devAPIKeyID, "dev", keyHash, devAPIKey[:12], []string{"*:*"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert api key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
	fmt.Printf("  Dev API key: %s\n", devAPIKey)
}
