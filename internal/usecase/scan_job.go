package usecase

import (
	"context"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/cache"
	"VolPulse/pkg/logger"
	"VolPulse/pkg/queue"
)

const (
	ScanJobType     = "premium_scan"
	scanJobKeyPfx   = "scanjob:"
	scanJobCacheTTL = time.Hour
)

// ScanJobPayload is the queue message body for a background scan.
type ScanJobPayload struct {
	ID       string   `json:"id"`
	Symbols  []string `json:"symbols"`
	Lookback int      `json:"lookback"`
}

// ScanJob runs premium scans off the request path. Results are cached
// under the job ID for later retrieval.
type ScanJob struct {
	uc      *PremiumScanUseCase
	cache   cache.Service
	log     *logger.Logger
	timeout time.Duration
}

func NewScanJob(uc *PremiumScanUseCase, c cache.Service, log *logger.Logger, timeout time.Duration) *ScanJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ScanJob{uc: uc, cache: c, log: log, timeout: timeout}
}

func (j *ScanJob) Name() string { return "premium-scan" }
func (j *ScanJob) Type() string { return ScanJobType }

func (j *ScanJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ScanJobPayload](payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	j.log.Info("scan job started",
		logger.String("id", p.ID),
		logger.Int("symbols", len(p.Symbols)))

	report, err := j.uc.Scan(ctx, p.Symbols, p.Lookback)
	result := models.ScanJobResult{ID: p.ID, Status: models.ScanJobDone, Report: report}
	if err != nil {
		result = models.ScanJobResult{ID: p.ID, Status: models.ScanJobFailed, Error: err.Error()}
	}
	// the job ctx may already be expired here; the result still has to land
	cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ccancel()
	if cerr := j.cache.Set(cctx, ScanJobKey(p.ID), result, scanJobCacheTTL); cerr != nil {
		j.log.Error("scan job result cache failed",
			logger.String("id", p.ID),
			logger.Error(cerr))
	}
	return err
}

// ScanJobKey builds the cache key for a job result.
func ScanJobKey(id string) string { return scanJobKeyPfx + id }

var _ queue.Job = (*ScanJob)(nil)
