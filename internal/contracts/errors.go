package contracts

import (
	"errors"
	"strings"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyFinished is returned when a completed or failed analysis is claimed again.
	ErrAlreadyFinished = errors.New("analysis already finished")
)

const (
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeExtraction        = "EXTRACTION_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
	ErrorCodeLimitReached      = "LIMIT_REACHED"
)

// Stage markers wrapped into pipeline errors so failures classify by errors.Is.
var (
	errStorage    = errors.New("storage")
	errExtraction = errors.New("extraction")
	errSchema     = errors.New("llm output schema mismatch")
)

func classifyFailure(err error) (string, bool) {
	switch {
	case err == nil:
		return ErrorCodeInternal, false
	case errors.Is(err, errSchema):
		return ErrorCodeLLMSchemaMismatch, false
	case errors.Is(err, errExtraction):
		return ErrorCodeExtraction, false
	case errors.Is(err, errStorage):
		return ErrorCodeStorage, true
	case llm.IsTimeout(err):
		return ErrorCodeLLMTimeout, true
	default:
		return ErrorCodeInternal, llm.IsRetryable(err)
	}
}

const maxErrorMessage = 500

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	if len(msg) > maxErrorMessage {
		cut := maxErrorMessage
		for cut > 0 && msg[cut]&0xC0 == 0x80 {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}
