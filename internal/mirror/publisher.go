package mirror

import (
	"context"
	"strconv"
	"time"

	"ledger/internal/metrics"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher writes the per-day amount and the remaining obligation to a
// Store. Write failures are logged and counted, never returned. A nil
// Publisher does nothing.
type Publisher struct {
	store           Store
	perDayLabel     string
	obligationLabel string
	log             *zap.SugaredLogger
	metrics         *metrics.Metrics
}

// NewPublisher builds a Publisher for the given labels.
func NewPublisher(store Store, perDayLabel, obligationLabel string, log *zap.SugaredLogger, m *metrics.Metrics) *Publisher {
	if store == nil {
		return nil
	}
	return &Publisher{
		store:           store,
		perDayLabel:     perDayLabel,
		obligationLabel: obligationLabel,
		log:             log,
		metrics:         m,
	}
}

// PerDay mirrors the per-day spending allowance.
func (p *Publisher) PerDay(ctx context.Context, amount int64) {
	if p == nil {
		return
	}
	p.publish(ctx, p.perDayLabel, amount)
}

// ObligationRemaining mirrors the unpaid obligation total.
func (p *Publisher) ObligationRemaining(ctx context.Context, amount int64) {
	if p == nil {
		return
	}
	p.publish(ctx, p.obligationLabel, amount)
}

func (p *Publisher) publish(ctx context.Context, label string, amount int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.store.Set(ctx, label, strconv.FormatInt(amount, 10)); err != nil {
		p.metrics.ObserveMirrorFailure(label)
		p.log.Warnw("mirror publish failed", "label", label, "amount", amount, "error", err)
		return
	}
	p.log.Debugw("mirror published", "label", label, "amount", amount)
}
