package main

import (
	"context"
	"fmt"
	"os"

	"pharma-ops/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

// dbcheck connects with the configured DB_* settings and prints the database name and
// the row count of every console table.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	err = conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n", dbName)

	fmt.Println("\nTables:")
	for _, table := range []string{"orders", "periodic_orders", "pharmacies"} {
		var count int64
		// Table names come from the fixed list above.
		if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
			fmt.Printf("  - %s: unavailable (%v)\n", table, err)
			continue
		}
		fmt.Printf("  - %s: %d rows\n", table, count)
	}
}
