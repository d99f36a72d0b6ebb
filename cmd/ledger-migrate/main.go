package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
)

func main() {
	rebuildFts := flag.Bool("rebuild-fts", false, "Rewrite customer_fts and product_fts from their source tables after migrating")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	if err := models.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")

	if !*rebuildFts {
		return
	}
	written, err := models.RebuildFts(context.Background(), db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild fts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("rebuilt fts rows=%d\n", written)
}
