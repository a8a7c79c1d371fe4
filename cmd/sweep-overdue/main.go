// Command sweep-overdue persists the overdue status for pending milestones
// past their due date. Intended to run from cron; the API derives the same
// status lazily, so skipping a run loses nothing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"fyp-management-api/config"
	"fyp-management-api/models"
	"fyp-management-api/services"
	"fyp-management-api/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "report what would change without writing to the database")
	flag.Parse()

	config.InitDB()
	st := store.NewGormStore(config.DB)

	if dryRun {
		pending, err := st.ListMilestones(store.MilestoneFilter{Status: models.MilestoneStatusPending})
		if err != nil {
			log.Fatalf("sweep failed: %v", err)
		}
		would := 0
		now := time.Now()
		for i := range pending {
			if services.DeriveMilestoneStatus(&pending[i], now) == models.MilestoneStatusOverdue {
				would++
			}
		}
		fmt.Printf("Dry run: %d of %d pending milestones would be marked overdue\n", would, len(pending))
		return
	}

	authz := services.NewAuthorizer(st)
	workflow := services.NewWorkflowService(st, authz, nil)

	swept, err := workflow.SweepOverdueMilestones()
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	fmt.Printf("Milestones marked overdue: %d\n", swept)
}
