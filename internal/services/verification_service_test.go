package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/mbnr/matrimonial/internal/events"
	"github.com/mbnr/matrimonial/internal/models"
	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerificationService(repo VerificationRepository, users UserRepository, n *MockNotifier, p *MockPublisher) *VerificationService {
	logger := slog.Default()
	return NewVerificationService(repo, users, n, p, logger, pkglogger.NewAuditLogger(logger))
}

func TestVerificationService_Submit_Success(t *testing.T) {
	pub := &MockPublisher{}
	svc := newVerificationService(&MockVerificationRepository{}, &MockUserRepository{}, &MockNotifier{}, pub)

	got, err := svc.Submit(context.Background(), "user1", SubmitVerificationInput{
		DocumentType:   models.DocumentPassport,
		DocumentNumber: " P123 ",
		DocumentImage:  "uploads/p123.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, got.Status)
	assert.Equal(t, "user1", got.UserID)
	assert.Equal(t, "P123", got.DocumentNumber)
	assert.Equal(t, []string{events.VerificationSubmitted}, pub.Types)
}

func TestVerificationService_Submit_InvalidDocumentType(t *testing.T) {
	repo := &MockVerificationRepository{
		CreateFunc: func(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error) {
			t.Fatal("Create must not be called")
			return nil, nil
		},
	}
	svc := newVerificationService(repo, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	_, err := svc.Submit(context.Background(), "user1", SubmitVerificationInput{DocumentType: "selfie"})

	assert.ErrorIs(t, err, models.ErrInvalidDocumentType)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestVerificationService_Submit_PendingExists(t *testing.T) {
	repo := &MockVerificationRepository{
		HasPendingFunc: func(ctx context.Context, userID string) (bool, error) { return true, nil },
	}
	svc := newVerificationService(repo, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	_, err := svc.Submit(context.Background(), "user1", SubmitVerificationInput{DocumentType: models.DocumentIDCard})

	assert.ErrorIs(t, err, models.ErrDuplicateActiveRequest)
}

func TestVerificationService_Submit_RaceLostToUniqueIndex(t *testing.T) {
	repo := &MockVerificationRepository{
		CreateFunc: func(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error) {
			return nil, models.ErrConflict
		},
	}
	svc := newVerificationService(repo, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	_, err := svc.Submit(context.Background(), "user1", SubmitVerificationInput{DocumentType: models.DocumentIDCard})

	assert.ErrorIs(t, err, models.ErrDuplicateActiveRequest)
}

func TestVerificationService_Submit_ConcurrentAtMostOnePending(t *testing.T) {
	var mu sync.Mutex
	pending := map[string]bool{}

	repo := &MockVerificationRepository{
		HasPendingFunc: func(ctx context.Context, userID string) (bool, error) {
			return false, nil // force every caller past the fast check
		},
		CreateFunc: func(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error) {
			mu.Lock()
			defer mu.Unlock()
			if pending[v.UserID] {
				return nil, models.ErrConflict
			}
			pending[v.UserID] = true
			v.Status = models.VerificationPending
			return v, nil
		},
	}
	svc := newVerificationService(repo, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), "user1", SubmitVerificationInput{DocumentType: models.DocumentOther})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created, duplicates := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, models.ErrDuplicateActiveRequest):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, duplicates)
}

func TestVerificationService_Submit_RepositoryFailure(t *testing.T) {
	repo := &MockVerificationRepository{
		HasPendingFunc: func(ctx context.Context, userID string) (bool, error) {
			return false, errors.New("connection reset")
		},
	}
	svc := newVerificationService(repo, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	_, err := svc.Submit(context.Background(), "user1", SubmitVerificationInput{DocumentType: models.DocumentIDCard})

	assert.Equal(t, models.ErrInternalServer, err)
}

func TestVerificationService_Process_InvalidDecision(t *testing.T) {
	svc := newVerificationService(&MockVerificationRepository{}, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	_, err := svc.Process(context.Background(), "vr_1", models.VerificationPending, "admin1", "")

	assert.ErrorIs(t, err, models.ErrInvalidVerificationDecision)
}

func TestVerificationService_Process_ApproveNotifiesAndPublishes(t *testing.T) {
	var gotReason string
	repo := &MockVerificationRepository{
		ProcessFunc: func(ctx context.Context, id, decision, reviewerID, reason string) (*models.VerificationRequest, error) {
			gotReason = reason
			return &models.VerificationRequest{ID: id, UserID: "user1", Status: decision, VerifiedBy: &reviewerID}, nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser(id, "asha@example.com", "Asha"), nil
		},
	}
	notifier := &MockNotifier{}
	pub := &MockPublisher{}
	svc := newVerificationService(repo, users, notifier, pub)

	got, err := svc.Process(context.Background(), "vr_1", models.VerificationApproved, "admin1", "ignored on approval")

	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, got.Status)
	assert.Empty(t, gotReason)
	require.Len(t, notifier.Verification, 1)
	assert.Equal(t, "asha@example.com", notifier.Verification[0].To)
	assert.Equal(t, models.VerificationApproved, notifier.Verification[0].Decision)
	assert.Equal(t, []string{events.VerificationProcessed}, pub.Types)
}

func TestVerificationService_Process_AlreadyProcessed(t *testing.T) {
	repo := &MockVerificationRepository{
		ProcessFunc: func(ctx context.Context, id, decision, reviewerID, reason string) (*models.VerificationRequest, error) {
			return nil, models.ErrAlreadyProcessed
		},
	}
	notifier := &MockNotifier{}
	svc := newVerificationService(repo, &MockUserRepository{}, notifier, &MockPublisher{})

	_, err := svc.Process(context.Background(), "vr_1", models.VerificationRejected, "admin1", "blurry")

	assert.ErrorIs(t, err, models.ErrAlreadyProcessed)
	assert.Empty(t, notifier.Verification)
}

func TestVerificationService_Process_NotificationFailureDoesNotFail(t *testing.T) {
	repo := &MockVerificationRepository{
		ProcessFunc: func(ctx context.Context, id, decision, reviewerID, reason string) (*models.VerificationRequest, error) {
			return &models.VerificationRequest{ID: id, UserID: "user1", Status: decision, RejectionReason: reason}, nil
		},
	}
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser(id, "asha@example.com", "Asha"), nil
		},
	}
	notifier := &MockNotifier{Err: errors.New("ses throttled")}
	pub := &MockPublisher{Err: errors.New("nats down")}
	svc := newVerificationService(repo, users, notifier, pub)

	got, err := svc.Process(context.Background(), "vr_1", models.VerificationRejected, "admin1", "blurry")

	require.NoError(t, err)
	assert.Equal(t, "blurry", got.RejectionReason)
	assert.Len(t, notifier.Verification, 1)
}

func TestVerificationService_ListPending_RepositoryFailure(t *testing.T) {
	repo := &MockVerificationRepository{
		ListPendingFunc: func(ctx context.Context) ([]*models.VerificationRequest, error) {
			return nil, errors.New("boom")
		},
	}
	svc := newVerificationService(repo, &MockUserRepository{}, &MockNotifier{}, &MockPublisher{})

	_, err := svc.ListPending(context.Background())

	assert.Equal(t, models.ErrInternalServer, err)
}
