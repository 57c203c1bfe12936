package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/metrics"
	"github.com/fjcero/ClearGDPR/internal/model"
)

// Vault orchestrates per-subject encryption, consent flags, listings and
// crypto-shredding erasure. It holds no mutable state between calls; every
// multi-table mutation runs through the transaction manager.
type Vault struct {
	subjectStore model.SubjectStore
	keyStore     model.KeyStore
	eventStore   model.ErasureEventStore
	txManager    model.TxManager
	cipher       model.Cipher
	keyGenerator model.KeyGenerator
	ledger       model.ErasureLedger
	evidence     model.EvidenceStore
	metrics      *metrics.Metrics
	pageSize     int
	logger       *logger.Logger
}

// NewVault creates a vault service. evidence may be nil when no archive is
// configured; every other dependency is required.
func NewVault(
	subjectStore model.SubjectStore,
	keyStore model.KeyStore,
	eventStore model.ErasureEventStore,
	txManager model.TxManager,
	cipher model.Cipher,
	keyGenerator model.KeyGenerator,
	ledger model.ErasureLedger,
	evidence model.EvidenceStore,
	metrics *metrics.Metrics,
	pageSize int,
	logger *logger.Logger,
) *Vault {
	return &Vault{
		subjectStore: subjectStore,
		keyStore:     keyStore,
		eventStore:   eventStore,
		txManager:    txManager,
		cipher:       cipher,
		keyGenerator: keyGenerator,
		ledger:       ledger,
		evidence:     evidence,
		metrics:      metrics,
		pageSize:     pageSize,
		logger:       logger,
	}
}

// GetSubjectData decrypts and returns the subject's personal data. Erased and
// never-initialized subjects are indistinguishable here: both fail with
// model.ErrNotFound, since erasure removes the key.
func (s *Vault) GetSubjectData(ctx context.Context, subjectID string) (json.RawMessage, error) {
	subject, err := s.subjectStore.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.Status != model.SubjectStatusActive || len(subject.EncryptedData) == 0 {
		return nil, model.ErrNotFound
	}

	key, err := s.keyStore.GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.cipher.Decrypt(subject.EncryptedData, key.Material)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt personal data: %w", err)
	}
	if !json.Valid(plaintext) {
		return nil, errors.New("decrypted personal data is not valid JSON")
	}

	return json.RawMessage(plaintext), nil
}

// InitializeSubject creates the subject with default consent flags on first
// call and re-encrypts its personal data on every later call. The whole
// sequence runs in one transaction; an update always reuses the stored key
// and only generates a fresh one when no key row exists.
func (s *Vault) InitializeSubject(ctx context.Context, params model.InitializeSubjectParams) error {
	if !json.Valid(params.PersonalData) {
		return errors.New("personal data is not a valid JSON document")
	}

	err := s.txManager.RunInTx(ctx, func(tx model.TxStores) error {
		subject, err := tx.Subjects.GetByID(ctx, params.SubjectID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			return s.createSubject(ctx, tx, params)
		case err != nil:
			return err
		default:
			return s.reencryptSubject(ctx, tx, subject, params)
		}
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementSubjectsInitialized()

	return nil
}

func (s *Vault) createSubject(ctx context.Context, tx model.TxStores, params model.InitializeSubjectParams) error {
	material, err := s.keyGenerator.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	ciphertext, err := s.cipher.Encrypt(params.PersonalData, material)
	if err != nil {
		return fmt.Errorf("failed to encrypt personal data: %w", err)
	}

	subject := model.Subject{
		ID:                 params.SubjectID,
		EncryptedData:      ciphertext,
		DirectMarketing:    true,
		EmailCommunication: true,
		Research:           true,
		Status:             model.SubjectStatusActive,
	}
	if _, err := tx.Subjects.Create(ctx, subject); err != nil {
		return err
	}

	key := model.EncryptionKey{SubjectID: params.SubjectID, Material: material}
	if err := tx.Keys.Create(ctx, key); err != nil {
		return err
	}

	return s.associateProcessors(ctx, tx, params.SubjectID, params.ProcessorIDs)
}

func (s *Vault) reencryptSubject(ctx context.Context, tx model.TxStores, subject model.Subject, params model.InitializeSubjectParams) error {
	key, err := tx.Keys.GetBySubject(ctx, subject.ID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		// Subject exists without a key: it was erased, or the key was
		// never written. Mint a fresh key and revive.
		material, err := s.keyGenerator.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate encryption key: %w", err)
		}
		key = model.EncryptionKey{SubjectID: subject.ID, Material: material}
		if err := tx.Keys.Create(ctx, key); err != nil {
			return err
		}
		if subject.Status == model.SubjectStatusErased {
			s.logger.Warn("Vault service: re-initializing erased subject under a fresh key",
				"subject_id", subject.ID)
		}
	case err != nil:
		return err
	}

	ciphertext, err := s.cipher.Encrypt(params.PersonalData, key.Material)
	if err != nil {
		return fmt.Errorf("failed to encrypt personal data: %w", err)
	}

	count, err := tx.Subjects.UpdateEncryptedData(ctx, subject.ID, ciphertext)
	if err != nil {
		return err
	}
	if err := checkSingleRow(count); err != nil {
		return err
	}

	return s.associateProcessors(ctx, tx, subject.ID, params.ProcessorIDs)
}

func (s *Vault) associateProcessors(ctx context.Context, tx model.TxStores, subjectID string, processorIDs []string) error {
	for _, processorID := range processorIDs {
		if err := tx.Associations.Upsert(ctx, subjectID, processorID); err != nil {
			return err
		}
	}
	return nil
}

// ListSubjects returns one page of the subjects associated with a processor,
// ordered by subject id. Erased subjects and subjects without a key never
// appear. An empty result still reports exactly one page.
func (s *Vault) ListSubjects(ctx context.Context, processorID string, page int) (model.SubjectPage, error) {
	if page < 1 {
		return model.SubjectPage{}, model.ErrPageOutOfRange
	}

	count, err := s.subjectStore.CountByProcessor(ctx, processorID)
	if err != nil {
		return model.SubjectPage{}, err
	}

	total := int((count + int64(s.pageSize) - 1) / int64(s.pageSize))
	if total < 1 {
		total = 1
	}
	if page > total {
		return model.SubjectPage{}, model.ErrPageOutOfRange
	}

	items, err := s.subjectStore.ListByProcessor(ctx, processorID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return model.SubjectPage{}, err
	}

	return model.SubjectPage{
		Data:   items,
		Paging: model.Paging{Current: page, Total: total},
	}, nil
}

// EraseDataAndRevokeConsent crypto-shreds a subject: one transaction deletes
// the encryption key and all processor associations, marks the subject erased
// and records a local erasure event. The subject row and its ciphertext are
// retained but permanently undecryptable. Only after the transaction commits
// is the erasure ledger notified, exactly once; a ledger failure is reported
// and counted but never fails the already durable erasure.
func (s *Vault) EraseDataAndRevokeConsent(ctx context.Context, subjectID string) error {
	s.logger.Debug("Vault service: starting erasure", "subject_id", subjectID)

	event := model.ErasureEvent{
		ID:        uuid.New(),
		SubjectID: subjectID,
		ErasedAt:  time.Now().UTC(),
	}

	alreadyErased := false
	err := s.txManager.RunInTx(ctx, func(tx model.TxStores) error {
		subject, err := tx.Subjects.GetByID(ctx, subjectID)
		if err != nil {
			return err
		}
		if subject.Status == model.SubjectStatusErased {
			alreadyErased = true
			return nil
		}

		if _, err := tx.Keys.DeleteBySubject(ctx, subjectID); err != nil {
			return err
		}
		if _, err := tx.Associations.DeleteBySubject(ctx, subjectID); err != nil {
			return err
		}

		count, err := tx.Subjects.MarkErased(ctx, subjectID)
		if err != nil {
			return err
		}
		if err := checkSingleRow(count); err != nil {
			return err
		}

		return tx.ErasureEvents.Create(ctx, event)
	})
	if err != nil {
		return err
	}

	if alreadyErased {
		s.logger.Info("Vault service: subject already erased", "subject_id", subjectID)
		return nil
	}

	s.metrics.IncrementSubjectsErased()
	s.logger.Info("Vault service: erased subject data",
		"subject_id", subjectID,
		"event_id", event.ID)

	s.anchorErasure(ctx, event)

	return nil
}

// anchorErasure runs after the erasure transaction has committed. Every step
// here is best-effort: the local erasure already succeeded and is
// irreversible, so failures are logged and counted, never returned.
func (s *Vault) anchorErasure(ctx context.Context, event model.ErasureEvent) {
	receipt, err := s.ledger.RecordErasure(ctx, event.SubjectID)
	if err != nil {
		s.metrics.IncrementLedgerRecordFailures()
		s.logger.Error("Vault service: failed to record erasure in ledger",
			"subject_id", event.SubjectID,
			"event_id", event.ID,
			"error", err)
	} else {
		event.LedgerReceipt = &receipt.Reference
		event.AnchoredAt = &receipt.AnchoredAt
		if err := s.eventStore.SetReceipt(ctx, event.ID, receipt.Reference, receipt.AnchoredAt); err != nil {
			s.logger.Error("Vault service: failed to store ledger receipt",
				"subject_id", event.SubjectID,
				"event_id", event.ID,
				"error", err)
		}
	}

	s.archiveEvidence(ctx, event)
}

type erasureEvidence struct {
	EventID       string     `json:"event_id"`
	SubjectID     string     `json:"subject_id"`
	ErasedAt      time.Time  `json:"erased_at"`
	LedgerReceipt *string    `json:"ledger_receipt"`
	AnchoredAt    *time.Time `json:"anchored_at"`
}

func (s *Vault) archiveEvidence(ctx context.Context, event model.ErasureEvent) {
	if s.evidence == nil {
		return
	}

	doc, err := json.Marshal(erasureEvidence{
		EventID:       event.ID.String(),
		SubjectID:     event.SubjectID,
		ErasedAt:      event.ErasedAt,
		LedgerReceipt: event.LedgerReceipt,
		AnchoredAt:    event.AnchoredAt,
	})
	if err != nil {
		s.metrics.IncrementEvidenceFailures()
		s.logger.Error("Vault service: failed to marshal erasure evidence",
			"event_id", event.ID, "error", err)
		return
	}

	key := fmt.Sprintf("erasures/%s/%s.json", event.SubjectID, event.ID)
	if err := s.evidence.Upload(ctx, key, bytes.NewReader(doc)); err != nil {
		s.metrics.IncrementEvidenceFailures()
		s.logger.Error("Vault service: failed to archive erasure evidence",
			"event_id", event.ID,
			"key", key,
			"error", err)
	}
}

// Restrict overwrites the three consent flags on the subject row.
func (s *Vault) Restrict(ctx context.Context, subjectID string, restrictions model.Restrictions) error {
	count, err := s.subjectStore.UpdateRestrictions(ctx, subjectID, restrictions)
	if err != nil {
		return err
	}
	return checkSingleRow(count)
}

// GetSubjectRestrictions returns the subject's current consent flags. Flags
// survive erasure, so this works for erased subjects too.
func (s *Vault) GetSubjectRestrictions(ctx context.Context, subjectID string) (model.Restrictions, error) {
	subject, err := s.subjectStore.GetByID(ctx, subjectID)
	if err != nil {
		return model.Restrictions{}, err
	}

	return model.Restrictions{
		DirectMarketing:    subject.DirectMarketing,
		EmailCommunication: subject.EmailCommunication,
		Research:           subject.Research,
	}, nil
}

// Object sets the subject's objection flag.
func (s *Vault) Object(ctx context.Context, subjectID string, objection bool) error {
	count, err := s.subjectStore.UpdateObjection(ctx, subjectID, objection)
	if err != nil {
		return err
	}
	return checkSingleRow(count)
}

// GetSubjectObjection returns the objection flag, or nil when the subject has
// never objected.
func (s *Vault) GetSubjectObjection(ctx context.Context, subjectID string) (*bool, error) {
	subject, err := s.subjectStore.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	return subject.Objection, nil
}

// GetErasureHistory returns the subject's recorded erasure events with any
// ledger receipts collected so far.
func (s *Vault) GetErasureHistory(ctx context.Context, subjectID string) ([]model.ErasureEvent, error) {
	if _, err := s.subjectStore.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	return s.eventStore.GetBySubject(ctx, subjectID)
}

// checkSingleRow translates the affected-row count of an id-scoped update:
// zero rows means the subject does not exist, more than one row means the
// store's uniqueness invariant is broken.
func checkSingleRow(count int64) error {
	if count == 0 {
		return model.ErrNotFound
	}
	if count > 1 {
		return model.ErrIntegrityViolation
	}
	return nil
}
