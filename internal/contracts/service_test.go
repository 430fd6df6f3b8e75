package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/documents"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/queue"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object/local"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

const goodReview = `{"summary":"Standard PKWT.","contractType":"PKWT","parties":["PT Maju"],"keyTerms":{"salary":"Rp 8.000.000"},"risks":[{"clause":"Unpaid overtime","severity":"high","explanation":"x","recommendation":"y"}],"overallRisk":"high","fairnessScore":60}`

const contractText = "Perjanjian Kerja Waktu Tertentu antara PT Maju dan Budi. Gaji Rp 8.000.000."

type fakeQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *fakeQueue) Send(_ context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

type testEnv struct {
	svc   *Service
	repo  *MemoryRepo
	docs  *documents.Service
	quota *usage.Service
	calls int
}

func newTestEnv(t *testing.T, gen func(llm.Prompt) (json.RawMessage, error), q queue.Client) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:  NewMemoryRepo(),
		docs:  documents.NewService(local.New(t.TempDir()), documents.NewMemoryRepo(), "local"),
		quota: usage.NewService(),
	}
	generator := llm.GeneratorFunc(func(_ context.Context, p llm.Prompt) (json.RawMessage, error) {
		env.calls++
		return gen(p)
	})
	env.svc = NewService(env.repo, env.docs, generator, env.quota, q)
	env.svc.spawn = func(fn func()) { fn() }
	return env
}

func staticGen(out string) func(llm.Prompt) (json.RawMessage, error) {
	return func(llm.Prompt) (json.RawMessage, error) { return json.RawMessage(out), nil }
}

func TestCreateProcessesInlineWithoutQueue(t *testing.T) {
	var prompt llm.Prompt
	env := newTestEnv(t, func(p llm.Prompt) (json.RawMessage, error) {
		prompt = p
		return json.RawMessage(goodReview), nil
	}, nil)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, "google:1", "pkwt.txt", strings.NewReader(contractText), "  first job  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusQueued || a.Notes != "first job" {
		t.Fatalf("unexpected created analysis: %+v", a)
	}

	got, err := env.svc.Get(ctx, "google:1", a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusCompleted || got.Result == nil || got.Result.FairnessScore != 60 || got.StartedAt == nil || got.CompletedAt == nil {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if !strings.Contains(prompt.User, "Reviewer notes from the worker: first job") || !strings.Contains(prompt.User, "Gaji Rp 8.000.000") {
		t.Fatalf("prompt missing notes or text:\n%s", prompt.User)
	}

	doc, err := env.docs.Get(ctx, "google:1", a.DocumentID)
	if err != nil || doc.Kind != documents.KindContract || doc.ExtractedTextKey == "" {
		t.Fatalf("contract document not recorded with extraction: %+v err=%v", doc, err)
	}
	u, _ := env.quota.Get(ctx, "google:1")
	if u.Used != 1 {
		t.Fatalf("expected one usage unit, used=%d", u.Used)
	}
}

func TestProcessAnalysisFailures(t *testing.T) {
	tests := []struct {
		name      string
		gen       func(llm.Prompt) (json.RawMessage, error)
		body      string
		code      string
		retryable bool
	}{
		{
			name: "timeout",
			gen: func(llm.Prompt) (json.RawMessage, error) {
				return nil, context.DeadlineExceeded
			},
			body: contractText, code: ErrorCodeLLMTimeout, retryable: true,
		},
		{name: "schema", gen: staticGen(`{"risks":[]}`), body: contractText, code: ErrorCodeLLMSchemaMismatch},
		{name: "empty document", gen: staticGen(goodReview), body: "   \n  ", code: ErrorCodeExtraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.gen, nil)
			a, err := env.svc.Create(context.Background(), "google:1", "contract.txt", strings.NewReader(tt.body), "")
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			got, _ := env.repo.GetByID(context.Background(), a.ID)
			if got.Status != StatusFailed || got.Failure == nil {
				t.Fatalf("expected failed analysis, got %+v", got)
			}
			if got.Failure.Code != tt.code || got.Failure.Retryable != tt.retryable || got.Failure.Message == "" {
				t.Fatalf("unexpected failure: %+v", got.Failure)
			}
			if got.Result != nil {
				t.Fatalf("failed analysis must not carry a result")
			}
		})
	}
}

func TestCreateEnqueuesWhenQueueConfigured(t *testing.T) {
	q := &fakeQueue{}
	env := newTestEnv(t, staticGen(goodReview), q)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, "google:1", "pkwt.txt", strings.NewReader(contractText), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(q.sent) != 1 || q.sent[0].AnalysisID != a.ID || q.sent[0].Kind != queue.KindContractAnalysis {
		t.Fatalf("unexpected queue messages: %+v", q.sent)
	}
	if got, _ := env.repo.GetByID(ctx, a.ID); got.Status != StatusQueued || env.calls != 0 {
		t.Fatalf("queued analysis must wait for the worker: %+v calls=%d", got, env.calls)
	}

	if err := env.svc.ProcessAnalysis(ctx, a.ID); err != nil {
		t.Fatalf("ProcessAnalysis: %v", err)
	}
	if err := env.svc.ProcessAnalysis(ctx, a.ID); err != nil {
		t.Fatalf("redelivered ProcessAnalysis: %v", err)
	}
	if got, _ := env.repo.GetByID(ctx, a.ID); got.Status != StatusCompleted || env.calls != 1 {
		t.Fatalf("expected a single completed run: %+v calls=%d", got, env.calls)
	}
	if err := env.svc.ProcessAnalysis(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown analysis, got %v", err)
	}
}

func TestCreateFallsBackWhenEnqueueFails(t *testing.T) {
	env := newTestEnv(t, staticGen(goodReview), &fakeQueue{err: errors.New("sqs unavailable")})
	a, err := env.svc.Create(context.Background(), "google:1", "pkwt.txt", strings.NewReader(contractText), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, _ := env.repo.GetByID(context.Background(), a.ID); got.Status != StatusCompleted {
		t.Fatalf("expected in-process completion, got %s", got.Status)
	}
}

func TestCreateRejects(t *testing.T) {
	env := newTestEnv(t, staticGen(goodReview), nil)
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, "google:1", "pkwt.txt", strings.NewReader(contractText), strings.Repeat("n", maxNotesRunes+1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long notes, got %v", err)
	}
	if _, err := env.svc.Create(ctx, "google:1", "scan.png", strings.NewReader("\x89PNG\r\n\x1a\n\x00\x00"), ""); !errors.Is(err, documents.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	if _, err := env.quota.Consume(ctx, "guest:abcdefgh", usage.GuestLimit); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if _, err := env.svc.Create(ctx, "guest:abcdefgh", "pkwt.txt", strings.NewReader(contractText), ""); !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if docs, _ := env.docs.List(ctx, "guest:abcdefgh", "", 10, 0); len(docs) != 0 {
		t.Fatalf("over-quota request must not store a document")
	}
}

// lateQuota passes the pre-check so Consume is the only gate, as when a
// concurrent request spends the last unit between the two calls.
type lateQuota struct{ *usage.Service }

func (lateQuota) CanConsume(context.Context, string, int) (bool, usage.Usage, error) {
	return true, usage.Usage{}, nil
}

func TestCreateLosingQuotaRaceClosesAnalysis(t *testing.T) {
	q := &fakeQueue{}
	env := newTestEnv(t, staticGen(goodReview), q)
	env.svc.Usage = lateQuota{env.quota}
	ctx := context.Background()

	if _, err := env.quota.Consume(ctx, "guest:abcdefgh", usage.GuestLimit); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if _, err := env.svc.Create(ctx, "guest:abcdefgh", "pkwt.txt", strings.NewReader(contractText), ""); !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	list, err := env.svc.List(ctx, "guest:abcdefgh", 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v err=%v", list, err)
	}
	if list[0].Status != StatusFailed || list[0].Failure == nil || list[0].Failure.Code != ErrorCodeLimitReached {
		t.Fatalf("analysis should be closed as over limit: %+v", list[0])
	}
	if len(q.sent) != 0 || env.calls != 0 {
		t.Fatalf("over-limit analysis must not be dispatched: sent=%d calls=%d", len(q.sent), env.calls)
	}
	if u, _ := env.quota.Get(ctx, "guest:abcdefgh"); u.Used != usage.GuestLimit {
		t.Fatalf("usage exceeded limit: %+v", u)
	}
}

func TestGetIsScopedToOwner(t *testing.T) {
	env := newTestEnv(t, staticGen(goodReview), nil)
	a, err := env.svc.Create(context.Background(), "google:1", "pkwt.txt", strings.NewReader(contractText), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.svc.Get(context.Background(), "google:2", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
