package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workloadhq/insights/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts and database reachability",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, log := loadConfig()

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	latency, err := db.Probe(ctx)
	if err != nil {
		log.Error("Database probe failed", "error", err, "latency", latency)
		os.Exit(1)
	}
	fmt.Printf("database reachable (%v)\n\n", latency)

	tables := []string{"users", "activities", "categories", "geofences", "llm_providers", "messages"}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")

	for _, table := range tables {
		var count int64
		if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
			_, _ = fmt.Fprintf(w, "%s\terror: %v\n", table, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\n", table, count)
	}

	_ = w.Flush()
}
