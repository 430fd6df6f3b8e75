package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/db"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
)

// ErrInvalidInput is returned when either identity is missing or already a user.
var ErrInvalidInput = errors.New("invalid claim")

// Claimer reassigns rows owned by a guest identity.
type Claimer interface {
	ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error)
}

type Service struct {
	DB *sql.DB

	Documents Claimer
	Contracts Claimer
	Salary    Claimer
}

type ClaimResult struct {
	MigratedDocuments int `json:"migratedDocuments"`
	MigratedContracts int `json:"migratedContracts"`
	MigratedSalary    int `json:"migratedSalaryRequests"`
}

// NewService claims through a single transaction when sqlDB is set and
// through the in-memory claimers otherwise.
func NewService(sqlDB *sql.DB, docs, contracts, salary Claimer) *Service {
	return &Service{DB: sqlDB, Documents: docs, Contracts: contracts, Salary: salary}
}

// ClaimGuest moves a guest's documents, contract analyses and salary
// history to a signed-in user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, userID string) (ClaimResult, error) {
	guestUserID = strings.TrimSpace(guestUserID)
	userID = strings.TrimSpace(userID)
	if !strings.HasPrefix(guestUserID, "guest:") || userID == "" || strings.HasPrefix(userID, "guest:") {
		return ClaimResult{}, ErrInvalidInput
	}

	var (
		res ClaimResult
		err error
	)
	if s.DB != nil {
		res, err = claimWithTx(ctx, s.DB, guestUserID, userID)
	} else {
		res, err = s.claimEach(ctx, guestUserID, userID)
	}
	if err != nil {
		return ClaimResult{}, err
	}
	telemetry.Info("account.guest_claimed", map[string]any{
		"userId":    userID,
		"documents": res.MigratedDocuments,
		"contracts": res.MigratedContracts,
		"salary":    res.MigratedSalary,
	})
	return res, nil
}

func claimWithTx(ctx context.Context, sqlDB *sql.DB, guestUserID, userID string) (ClaimResult, error) {
	var res ClaimResult
	now := time.Now().UTC()
	err := db.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		n, err := execCount(ctx, tx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, userID, guestUserID)
		if err != nil {
			return fmt.Errorf("claim documents: %w", err)
		}
		res.MigratedDocuments = n

		n, err = execCount(ctx, tx, `UPDATE contract_analyses SET user_id = $1, updated_at = $3 WHERE user_id = $2`, userID, guestUserID, now)
		if err != nil {
			return fmt.Errorf("claim contracts: %w", err)
		}
		res.MigratedContracts = n

		n, err = execCount(ctx, tx, `UPDATE salary_requests SET user_id = $1 WHERE user_id = $2`, userID, guestUserID)
		if err != nil {
			return fmt.Errorf("claim salary requests: %w", err)
		}
		res.MigratedSalary = n
		return nil
	})
	if err != nil {
		return ClaimResult{}, err
	}
	return res, nil
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	out, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := out.RowsAffected()
	return int(n), nil
}

func (s *Service) claimEach(ctx context.Context, guestUserID, userID string) (ClaimResult, error) {
	var res ClaimResult
	steps := []struct {
		name    string
		claimer Claimer
		dst     *int
	}{
		{"documents", s.Documents, &res.MigratedDocuments},
		{"contracts", s.Contracts, &res.MigratedContracts},
		{"salary requests", s.Salary, &res.MigratedSalary},
	}
	for _, step := range steps {
		if step.claimer == nil {
			continue
		}
		n, err := step.claimer.ClaimGuest(ctx, guestUserID, userID)
		if err != nil {
			return ClaimResult{}, fmt.Errorf("claim %s: %w", step.name, err)
		}
		*step.dst = n
	}
	return res, nil
}
