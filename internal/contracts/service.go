package contracts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/documents"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/queue"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/metrics"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/middleware"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

const maxNotesRunes = 1000

// DocumentSource stores contract uploads and yields their text.
type DocumentSource interface {
	Upload(ctx context.Context, userID, kind, fileName string, r io.Reader) (documents.Document, error)
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
	TextFor(ctx context.Context, doc documents.Document) (string, error)
}

// Quota gates analyses per principal.
type Quota interface {
	CanConsume(ctx context.Context, userID string, n int) (bool, usage.Usage, error)
	Consume(ctx context.Context, userID string, n int) (usage.Usage, error)
}

// Service runs contract analyses.
type Service struct {
	Repo      Repo
	Docs      DocumentSource
	Generator llm.Generator
	Usage     Quota
	// Queue receives jobs when set; otherwise jobs run in-process.
	Queue queue.Client

	now   func() time.Time
	newID func() string
	spawn func(func())
}

// NewService wires a Service. A nil q processes analyses in a goroutine.
func NewService(repo Repo, docs DocumentSource, gen llm.Generator, quota Quota, q queue.Client) *Service {
	return &Service{
		Repo:      repo,
		Docs:      docs,
		Generator: gen,
		Usage:     quota,
		Queue:     q,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		spawn:     func(fn func()) { go fn() },
	}
}

// Create uploads a contract, records a queued analysis and dispatches it.
func (s *Service) Create(ctx context.Context, userID, fileName string, r io.Reader, notes string) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesRunes {
		return Analysis{}, fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, maxNotesRunes)
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Analysis{}, fmt.Errorf("check usage: %w", err)
		}
		if !ok {
			return Analysis{}, usage.ErrLimitReached
		}
	}

	doc, err := s.Docs.Upload(ctx, userID, documents.KindContract, fileName, r)
	if err != nil {
		return Analysis{}, err
	}

	now := s.now()
	a := Analysis{
		ID:         s.newID(),
		UserID:     userID,
		DocumentID: doc.ID,
		Status:     StatusQueued,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return Analysis{}, fmt.Errorf("store analysis: %w", err)
	}
	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			// Close the record so it is never dispatched.
			failure := Failure{Code: ErrorCodeInternal, Message: "usage check failed", Retryable: true}
			if errors.Is(err, usage.ErrLimitReached) {
				failure = Failure{Code: ErrorCodeLimitReached, Message: "usage limit reached"}
			}
			if ferr := s.Repo.Fail(context.WithoutCancel(ctx), a.ID, failure, s.now()); ferr != nil {
				telemetry.Error("contract.fail_record_failed", map[string]any{"contract_id": a.ID, "error": ferr.Error()})
			}
			return Analysis{}, err
		}
	}

	s.logStatus(ctx, a, StatusQueued, "created->queued", nil)
	s.dispatch(ctx, a.ID)
	return a, nil
}

// dispatch enqueues the job, falling back to in-process work when the queue
// is absent or rejects the message.
func (s *Service) dispatch(ctx context.Context, id string) {
	requestID := middleware.RequestIDFrom(ctx)
	if s.Queue != nil {
		err := s.Queue.Send(ctx, queue.NewContractMessage(id, requestID, s.now()))
		if err == nil {
			return
		}
		telemetry.Warn("contract.enqueue_failed", map[string]any{
			"contract_id": id,
			"request_id":  requestID,
			"error":       err.Error(),
		})
	}
	bg := middleware.Detach(ctx)
	s.spawn(func() {
		if err := s.ProcessAnalysis(bg, id); err != nil {
			telemetry.Error("contract.process_failed", map[string]any{"contract_id": id, "error": err.Error()})
		}
	})
}

// ProcessAnalysis runs one analysis to a terminal status. It returns an error
// only when the outcome could not be recorded, so the job can be redelivered.
func (s *Service) ProcessAnalysis(ctx context.Context, id string) (err error) {
	startedAt := s.now()
	if err := s.Repo.MarkProcessing(ctx, id, startedAt); err != nil {
		if errors.Is(err, ErrAlreadyFinished) {
			telemetry.Info("contract.skip_finished", map[string]any{"contract_id": id})
			return nil
		}
		return fmt.Errorf("mark processing: %w", err)
	}

	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(ctx, Analysis{ID: id}, fmt.Errorf("%w: load analysis: %w", errStorage, err), startedAt)
	}
	metrics.IncContractStarted()
	s.logStatus(ctx, a, StatusProcessing, "queued->processing", nil)

	defer func() {
		if r := recover(); r != nil {
			err = s.fail(ctx, a, fmt.Errorf("panic: %v", r), startedAt)
		}
	}()

	result, runErr := s.analyze(ctx, a)
	if runErr != nil {
		return s.fail(ctx, a, runErr, startedAt)
	}

	completedAt := s.now()
	if err := s.Repo.Complete(ctx, id, result, completedAt); err != nil {
		return s.fail(ctx, a, fmt.Errorf("%w: store result: %w", errStorage, err), startedAt)
	}
	duration := durationMs(startedAt, completedAt)
	metrics.IncContractCompleted()
	metrics.ObserveContractDurationMs(duration)
	s.logStatus(ctx, a, StatusCompleted, "processing->completed", map[string]any{
		"duration_ms":  duration,
		"overall_risk": result.OverallRisk,
	})
	return nil
}

func (s *Service) analyze(ctx context.Context, a Analysis) (Result, error) {
	if s.Docs == nil || s.Generator == nil {
		return Result{}, errors.New("contract analysis dependencies missing")
	}
	doc, err := s.Docs.Get(ctx, a.UserID, a.DocumentID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: document lookup id=%s: %w", errStorage, a.DocumentID, err)
	}
	text, err := s.Docs.TextFor(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("%w: document %s mime %s: %w", errExtraction, doc.ID, doc.MimeType, err)
	}
	raw, err := s.Generator.GenerateJSON(ctx, buildPrompt(text, a.Notes))
	if err != nil {
		return Result{}, fmt.Errorf("llm analyze: %w", err)
	}
	return normalizeResult(raw)
}

func (s *Service) fail(ctx context.Context, a Analysis, cause error, startedAt time.Time) error {
	code, retryable := classifyFailure(cause)
	failure := Failure{Code: code, Message: sanitizeError(cause), Retryable: retryable}
	completedAt := s.now()
	if err := s.Repo.Fail(context.WithoutCancel(ctx), a.ID, failure, completedAt); err != nil {
		return fmt.Errorf("record failure %s: %w (cause: %s)", code, err, failure.Message)
	}
	duration := durationMs(startedAt, completedAt)
	metrics.IncContractFailed()
	metrics.ObserveContractDurationMs(duration)
	s.logStatus(ctx, a, StatusFailed, "processing->failed", map[string]any{
		"duration_ms": duration,
		"error_code":  code,
		"retryable":   retryable,
		"error":       failure.Message,
	})
	return nil
}

func (s *Service) logStatus(ctx context.Context, a Analysis, status, transition string, extra map[string]any) {
	fields := map[string]any{
		"request_id":        middleware.RequestIDFrom(ctx),
		"user_id":           a.UserID,
		"document_id":       a.DocumentID,
		"contract_id":       a.ID,
		"status":            status,
		"status_transition": transition,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("contract.status", fields)
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}

// Get returns an analysis owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Analysis, error) {
	if strings.TrimSpace(id) == "" {
		return Analysis{}, ErrNotFound
	}
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// List returns userID's analyses newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}
