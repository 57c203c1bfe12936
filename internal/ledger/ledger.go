package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fjcero/ClearGDPR/internal/config"
	"github.com/fjcero/ClearGDPR/internal/ledger/kafka"
	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/model"
)

// New creates an erasure ledger based on the configured mode.
func New(cfg config.Ledger, log *logger.Logger) (model.ErasureLedger, error) {
	switch cfg.Mode {
	case "kafka":
		return kafka.NewProducer(cfg.Brokers, cfg.Topic)
	case "log", "":
		return NewLogLedger(log), nil
	default:
		return nil, fmt.Errorf("unknown ledger mode: %q", cfg.Mode)
	}
}

var _ model.ErasureLedger = (*LogLedger)(nil)

// LogLedger records erasures in the application log only. It is the default
// for environments without an external ledger; receipts it issues are local
// and carry no external anchoring.
type LogLedger struct {
	logger *logger.Logger
}

func NewLogLedger(log *logger.Logger) *LogLedger {
	return &LogLedger{logger: log}
}

// RecordErasure logs the erasure and returns a locally minted receipt.
func (l *LogLedger) RecordErasure(_ context.Context, subjectID string) (model.ErasureReceipt, error) {
	receipt := model.ErasureReceipt{
		Reference:  "log:" + uuid.NewString(),
		AnchoredAt: time.Now().UTC(),
	}

	l.logger.Info("Erasure ledger: recorded erasure",
		"subject_id", subjectID,
		"reference", receipt.Reference)

	return receipt, nil
}
