package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/workflow"
)

func main() {
	rangeStr := flag.String("range", string(display.DateRangeThisMonth), "Date range: ALL_TIME, TODAY, YESTERDAY, THIS_WEEK, THIS_MONTH")
	out := flag.String("out", "", "Write the workbook to this path")
	upload := flag.Bool("upload", false, "Upload the workbook to GCS_BUCKET under exports/queues/")
	flag.Parse()

	r := display.DateRange(strings.ToUpper(strings.TrimSpace(*rangeStr)))
	if !r.IsValid() || r == display.DateRangeCustom {
		fmt.Fprintf(os.Stderr, "invalid range %q\n", *rangeStr)
		os.Exit(1)
	}
	if *out == "" && !*upload {
		fmt.Fprintln(os.Stderr, "--out or --upload is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := context.Background()
	date := display.QueueDateWithRange(r, time.Now())
	queues := models.NewQueueRepository(db, models.NewCustomerRepository(db))
	rows, err := queues.SelectAllInRange(ctx, date.Start, date.End)
	if err != nil {
		fmt.Fprintf(os.Stderr, "select queues: %v\n", err)
		os.Exit(1)
	}

	export, err := workflow.ExportQueues(ctx, rows, time.Local, *upload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	if *out != "" {
		if err := os.WriteFile(*out, export.Data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
			os.Exit(1)
		}
	}
	fmt.Printf("exported range=%s rows=%d file=%s url=%s\n", date.Range, export.Rows, export.FileName, export.Url)
}
