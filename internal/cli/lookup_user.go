package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/workloadhq/insights/internal/core/domain"
	"github.com/workloadhq/insights/internal/infra/storage/postgres"
)

// lookupUserCmd inspects a user and the rows referencing it, which is the
// question that comes up whenever a delete fails on a foreign key.
var lookupUserCmd = &cobra.Command{
	Use:   "lookup-user <id-or-phone>",
	Short: "Inspect a user and the rows that reference it",
	Args:  cobra.ExactArgs(1),
	Run:   runLookupUser,
}

func init() {
	rootCmd.AddCommand(lookupUserCmd)
}

func runLookupUser(cmd *cobra.Command, args []string) {
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

	users := postgres.NewUserRepo(db)

	var user *domain.User
	if id, perr := uuid.Parse(args[0]); perr == nil {
		user, err = users.GetByID(ctx, id)
	} else {
		user, err = users.GetByPhone(ctx, args[0])
	}
	if err != nil {
		log.Error("Lookup failed", "error", err)
		os.Exit(1)
	}
	if user == nil {
		fmt.Printf("no user matches %q\n", args[0])
		os.Exit(1)
	}

	fmt.Printf("id:      %s\n", user.ID)
	fmt.Printf("name:    %s\n", user.Name)
	fmt.Printf("phone:   %s\n", user.Phone)
	fmt.Printf("role:    %s\n", user.Role)
	fmt.Printf("active:  %t\n", user.Active)
	fmt.Printf("created: %s\n\n", user.CreatedAt.Format(time.RFC3339))

	var activityCount, messageCount int64
	_ = db.GetContext(ctx, &activityCount, "SELECT COUNT(*) FROM activities WHERE user_id = $1", user.ID)
	_ = db.GetContext(ctx, &messageCount, "SELECT COUNT(*) FROM messages WHERE user_id = $1", user.ID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "REFERENCING TABLE\tROWS")
	_, _ = fmt.Fprintf(w, "activities\t%d\n", activityCount)
	_, _ = fmt.Fprintf(w, "messages\t%d\n", messageCount)
	_ = w.Flush()

	if activityCount > 0 || messageCount > 0 {
		fmt.Println("\nuser cannot be deleted until referencing rows are removed")
	}
}
