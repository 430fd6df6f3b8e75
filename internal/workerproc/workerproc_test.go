package workerproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/queue"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/middleware"
)

type recordingProcessor struct {
	ids       []string
	requestID string
	err       error
}

func (p *recordingProcessor) ProcessAnalysis(ctx context.Context, id string) error {
	p.ids = append(p.ids, id)
	p.requestID = middleware.RequestIDFrom(ctx)
	return p.err
}

func encode(t *testing.T, msg queue.Message) string {
	t.Helper()
	raw, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(raw)
}

func TestHandleMessageDispatchesContract(t *testing.T) {
	p := &recordingProcessor{}
	body := encode(t, queue.NewContractMessage("c-1", "req-1", time.Now()))

	if err := HandleMessage(context.Background(), p, body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(p.ids) != 1 || p.ids[0] != "c-1" || p.requestID != "req-1" {
		t.Fatalf("unexpected dispatch: %+v", p)
	}
}

func TestHandleMessageUsesParsedMessage(t *testing.T) {
	p := &recordingProcessor{}
	msg := queue.NewContractMessage("c-2", "", time.Now())
	if err := HandleMessage(WithParsedMessage(context.Background(), msg), p, "ignored"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(p.ids) != 1 || p.ids[0] != "c-2" {
		t.Fatalf("expected parsed message to be used, got %v", p.ids)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	boom := errors.New("db down")
	p := &recordingProcessor{err: boom}
	err := HandleMessage(context.Background(), p, encode(t, queue.NewContractMessage("c-3", "r", time.Now())))
	var perr ErrProcess
	if !errors.As(err, &perr) || perr.AnalysisID != "c-3" || !errors.Is(err, boom) {
		t.Fatalf("expected ErrProcess wrapping cause, got %v", err)
	}
	if Unrecoverable(err) {
		t.Fatal("processing errors should be retried")
	}
}

func TestParseMessageErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        "  ",
		"bad json":     "{bad",
		"missing id":   `{"kind":"contract_analysis","requestId":"r"}`,
		"unknown kind": `{"kind":"resume_render","analysisId":"a"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseMessage(body)
			if err == nil || !Unrecoverable(err) {
				t.Fatalf("expected unrecoverable error, got %v", err)
			}
		})
	}
}

func TestParseMessageLegacyPayload(t *testing.T) {
	msg, meta, err := ParseMessage(`{"analysisId":"a-1","requestId":"r-1"}`)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.Kind != queue.KindContractAnalysis || meta.BodyLen == 0 || len(meta.BodySHA) != 64 {
		t.Fatalf("unexpected parse: %+v %+v", msg, meta)
	}
}
