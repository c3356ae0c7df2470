package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bluecore-studio/crm-api/pkg/analytics"
	"github.com/bluecore-studio/crm-api/pkg/followups"
	"github.com/bluecore-studio/crm-api/pkg/pipeline"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron       *cron.Cron
	followUps  *followups.Service
	pipelines  *pipeline.Service
	dashboards *analytics.Service
	logger     *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(followUps *followups.Service, pipelines *pipeline.Service, dashboards *analytics.Service, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:       cron.New(),
		followUps:  followUps,
		pipelines:  pipelines,
		dashboards: dashboards,
		logger:     logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Nightly at 2 AM: reconcile the next_follow_up cache on every lead.
	// The synchronous hooks keep it correct; this catches anything that
	// slipped through a crashed request.
	_, err := cm.cron.AddFunc("0 2 * * *", func() {
		cm.logger.Println("🕐 Running nightly follow-up reconcile...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := cm.followUps.ReconcileAll(ctx)
		if err != nil {
			cm.logger.Printf("❌ Follow-up reconcile failed after %d leads: %v", count, err)
			return
		}
		cm.logger.Printf("✅ Follow-up reconcile completed: %d leads", count)
	})
	if err != nil {
		return err
	}

	// Every 10 minutes: warm the pipeline and dashboard caches so the
	// first request after an invalidation does not pay the rebuild cost.
	_, err = cm.cron.AddFunc("*/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := cm.pipelines.Board(ctx); err != nil {
			cm.logger.Printf("⚠️ Pipeline cache warm failed: %v", err)
		}
		if _, err := cm.dashboards.Dashboard(ctx); err != nil {
			cm.logger.Printf("⚠️ Dashboard cache warm failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Daily at 2 AM: Reconcile follow-up cache")
	cm.logger.Println("  - Every 10 minutes: Warm pipeline and dashboard caches")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
