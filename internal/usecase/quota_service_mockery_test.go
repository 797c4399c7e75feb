package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pradiptarana/fixturesync/internal/domain/quota"
	quotamock "github.com/pradiptarana/fixturesync/internal/mocks/domain/quota"
	"github.com/pradiptarana/fixturesync/internal/platform/logging"
)

func TestQuotaService_Admit_RefusesLastUnitTwiceUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := quotamock.NewRepository(t)

	service := NewQuotaService(repo, QuotaConfig{DailyLimit: 10, Timezone: time.UTC}, logging.NewNop())

	ledger := quota.NewLedger(time.Now().UTC().Format(quota.LedgerDateLayout), 10)
	ledger.RequestsUsed = 9
	ledger.RequestsRemaining = 1

	repo.
		On("GetOrCreateLedger", mock.Anything, ledger.Date, 10).
		Return(ledger, nil).
		Twice()

	admitted, err := service.Admit(ctx)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if !admitted {
		t.Fatalf("expected first caller to be admitted")
	}

	admitted, err = service.Admit(ctx)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if admitted {
		t.Fatalf("expected second caller to be refused while the first is in flight")
	}
}

func TestQuotaService_RecordRequest_CountsOnlySuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := quotamock.NewRepository(t)

	service := NewQuotaService(repo, QuotaConfig{DailyLimit: 100, Timezone: time.UTC}, logging.NewNop())
	date := time.Now().UTC().Format(quota.LedgerDateLayout)

	updated := quota.NewLedger(date, 100)
	updated.RequestsUsed = 1
	updated.RequestsRemaining = 99
	updated.FixturesRequests = 1

	repo.
		On("RecordUsage", mock.Anything, mock.MatchedBy(func(update quota.UsageUpdate) bool {
			return update.Date == date &&
				update.Category == quota.CategoryFixtures &&
				update.Record.Counted()
		})).
		Return(updated, nil).
		Once()

	got, err := service.RecordRequest(ctx, RecordRequestInput{
		Endpoint:   "fixtures",
		Params:     map[string]string{"league": "39", "season": "2024"},
		Success:    true,
		HTTPStatus: 200,
	})
	if err != nil {
		t.Fatalf("record request: %v", err)
	}
	if got.RequestsUsed != 1 || got.RequestsRemaining != 99 {
		t.Fatalf("unexpected ledger after record: used=%d remaining=%d", got.RequestsUsed, got.RequestsRemaining)
	}
}

func TestQuotaService_RecordRequest_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := quotamock.NewRepository(t)

	service := NewQuotaService(repo, QuotaConfig{DailyLimit: 100, Timezone: time.UTC}, logging.NewNop())

	repoErr := errors.New("connection reset")
	repo.
		On("RecordUsage", mock.Anything, mock.Anything).
		Return(quota.Ledger{}, repoErr).
		Once()

	_, err := service.RecordRequest(ctx, RecordRequestInput{
		Endpoint:   "fixtures",
		Success:    false,
		HTTPStatus: 500,
	})
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
