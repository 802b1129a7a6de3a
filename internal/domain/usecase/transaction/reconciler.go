package transaction

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// DefaultReconcileInterval is how often the background reconciliation runs
const DefaultReconcileInterval = time.Hour

// ReconcilerConfig configures summary reconciliation
type ReconcilerConfig struct {
	Interval time.Duration
	AutoFix  bool // overwrite drifted summaries with the recomputed values
}

// ReconcileReport is the outcome for one merchant
type ReconcileReport struct {
	MerchantID uint64
	Drifts     []entity.SummaryDrift
	Fixed      bool
	RolledOver bool
}

// SummaryReconciler compares stored summaries with a fold over the
// transaction history and rolls day and month buckets forward
type SummaryReconciler struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	interval     time.Duration
	autoFix      bool
}

// NewSummaryReconciler creates a reconciler
func NewSummaryReconciler(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg ReconcilerConfig,
) *SummaryReconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReconcileInterval
	}
	return &SummaryReconciler{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger.Named("reconciler"),
		interval:     cfg.Interval,
		autoFix:      cfg.AutoFix,
	}
}

// ReconcileMerchant checks one merchant under its summary lock. fix overrides
// the configured auto fix when true.
func (r *SummaryReconciler) ReconcileMerchant(ctx context.Context, merchantID uint64, fix bool) (*ReconcileReport, error) {
	report := &ReconcileReport{MerchantID: merchantID}
	fix = fix || r.autoFix

	err := r.uow.Do(ctx, func(ctx context.Context) error {
		summaries := r.uow.GetSummaryRepository(ctx)

		stored, err := summaries.GetForUpdate(ctx, merchantID)
		if err != nil {
			return err
		}

		now := r.timeProvider.Now()
		report.RolledOver = stored.Rollover(now)

		txs, err := r.uow.GetTransactionRepository(ctx).AllForMerchant(ctx, merchantID)
		if err != nil {
			return err
		}

		computed := entity.FoldSummary(merchantID, txs, now)
		report.Drifts = stored.Diff(computed)

		if len(report.Drifts) > 0 && fix {
			stored.Overwrite(computed, now)
			report.Fixed = true
		}

		if report.RolledOver || report.Fixed {
			return summaries.Save(ctx, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(report.Drifts) > 0 {
		fields := map[string]any{
			"merchant_id": merchantID,
			"fixed":       report.Fixed,
		}
		for _, d := range report.Drifts {
			fields[d.Field] = d.String()
		}
		r.logger.Warn("Summary drift detected", fields)
	}
	return report, nil
}

// ReconcileAll checks every merchant. A failing merchant is logged and skipped.
func (r *SummaryReconciler) ReconcileAll(ctx context.Context, fix bool) ([]*ReconcileReport, error) {
	ids, err := r.uow.GetMerchantRepository(ctx).ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*ReconcileReport, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return reports, ctx.Err()
		}
		report, err := r.ReconcileMerchant(ctx, id, fix)
		if err != nil {
			r.logger.Error("Failed to reconcile merchant", map[string]any{
				"merchant_id": id,
				"error":       err.Error(),
			})
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// RolloverAll moves the day and month buckets of every merchant to now
// and returns how many summaries changed
func (r *SummaryReconciler) RolloverAll(ctx context.Context) (int, error) {
	ids, err := r.uow.GetMerchantRepository(ctx).ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, id := range ids {
		err := r.uow.Do(ctx, func(ctx context.Context) error {
			summaries := r.uow.GetSummaryRepository(ctx)
			summary, err := summaries.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if !summary.Rollover(r.timeProvider.Now()) {
				return nil
			}
			changed++
			return summaries.Save(ctx, summary)
		})
		if err != nil {
			r.logger.Error("Failed to roll summary over", map[string]any{
				"merchant_id": id,
				"error":       err.Error(),
			})
		}
	}
	return changed, nil
}

// Run reconciles every merchant on each tick until ctx is cancelled
func (r *SummaryReconciler) Run(ctx context.Context) {
	ticker := r.timeProvider.NewTicker(coreport.Duration(r.interval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			reports, err := r.ReconcileAll(ctx, false)
			if err != nil {
				r.logger.Error("Reconciliation failed", map[string]any{"error": err.Error()})
				continue
			}
			drifted := 0
			for _, rep := range reports {
				if len(rep.Drifts) > 0 {
					drifted++
				}
			}
			r.logger.Info("Reconciliation finished", map[string]any{
				"merchants": len(reports),
				"drifted":   drifted,
			})
		}
	}
}
