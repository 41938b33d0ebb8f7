package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tnmle/vastra-backend/internal/app/service"
	"github.com/tnmle/vastra-backend/pkg/logger"
)

// ReportScheduler runs the nightly maintenance pass: reconcile the
// products' sold counters against order history, then build and archive
// the previous day's sales report.
type ReportScheduler struct {
	cron          *cron.Cron
	reportService service.ReportService
	auditService  service.AuditService
	schedule      string
}

func NewReportScheduler(reportService service.ReportService, auditService service.AuditService, schedule string) *ReportScheduler {
	return &ReportScheduler{
		cron:          cron.New(),
		reportService: reportService,
		auditService:  auditService,
		schedule:      schedule,
	}
}

func (s *ReportScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runNightly)
	if err != nil {
		logger.Error("Failed to register nightly report job", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Report scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *ReportScheduler) Stop() {
	logger.Info("Stopping report scheduler", nil)
	s.cron.Stop()
}

func (s *ReportScheduler) runNightly() {
	logger.Info("Starting nightly maintenance run", nil)

	result, err := s.reportService.ReconcileTotalSold()
	if err != nil {
		logger.Error("Nightly reconciliation failed", err)
	} else {
		if result.Corrected > 0 {
			s.auditService.Record(service.SystemActor, "reconcile", "product", 0, result)
		}
		logger.Info("Nightly reconciliation finished", map[string]interface{}{
			"checked":   result.Checked,
			"corrected": result.Corrected,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	yesterday := time.Now().AddDate(0, 0, -1)
	url, err := s.reportService.BuildDailyReport(ctx, yesterday)
	if err != nil {
		logger.Error("Nightly report build failed", err)
		return
	}
	if url != "" {
		s.auditService.Record(service.SystemActor, "report", "daily_report", 0, map[string]interface{}{
			"url": url,
		})
	}
}
