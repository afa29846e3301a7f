package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stylora-app/stylora/internal/domain/subscription"
)

func activeIOSFact(txnID string) *subscription.Fact {
	end := time.Now().UTC().AddDate(0, 1, 0)
	return &subscription.Fact{
		ExternalID: txnID,
		Plan:       subscription.PlanPro,
		Status:     subscription.StatusActive,
		ProductID:  "com.stylora.pro.monthly",
		PeriodEnd:  &end,
		Receipt:    "c3R5bG9yYS1yZWNlaXB0",
	}
}

func newRestoreFixture() (*RestorePurchasesUseCase, *fakeSubscriptionRepo, *fakePurchaseRepo, *fakeGateway, *fakeVerifier) {
	subRepo := newFakeSubscriptionRepo()
	purchRepo := newFakePurchaseRepo()
	gateway := newFakeGateway()
	verifier := &fakeVerifier{}
	cache := newFakeCache()
	reconcile := NewReconcileFactUseCase(subRepo, purchRepo, &fakeTxRunner{}, cache, noopLogger{})
	uc := NewRestorePurchasesUseCase(subRepo, gateway, verifier, reconcile, noopLogger{})
	return uc, subRepo, purchRepo, gateway, verifier
}

func TestRestorePurchasesUseCase_StripeRestoreIsRepeatSafe(t *testing.T) {
	uc, subRepo, purchRepo, gateway, _ := newRestoreFixture()
	subRepo.seedSubscription(1, subscription.PlatformWeb, activeProFact("sub_1"))
	gateway.subs["sub_1"] = activeProFact("sub_1")

	for i := 0; i < 2; i++ {
		result, err := uc.Execute(context.Background(), RestorePurchasesCommand{
			UserID:   1,
			Platform: subscription.PlatformWeb,
		})
		assert.NoError(t, err)
		assert.True(t, result.Applied)
	}

	// Restoring again re-fetched the same truth and converged on it.
	assert.Len(t, purchRepo.rows, 1)
	assert.Equal(t, subscription.PlanPro, subRepo.subs[1].Plan())
	assert.Equal(t, subscription.StatusActive, subRepo.subs[1].Status())
}

func TestRestorePurchasesUseCase_ReusesStoredReceipt(t *testing.T) {
	uc, subRepo, _, _, verifier := newRestoreFixture()
	subRepo.seedSubscription(1, subscription.PlatformIOS, activeIOSFact("txn_1"))
	verifier.fact = activeIOSFact("txn_1")

	// A reinstall restores without the device resending the receipt.
	result, err := uc.Execute(context.Background(), RestorePurchasesCommand{
		UserID:   1,
		Platform: subscription.PlatformIOS,
	})

	assert.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "c3R5bG9yYS1yZWNlaXB0", verifier.receivedReceipt)
	assert.Equal(t, subscription.PlatformIOS, subRepo.subs[1].Platform())
}

func TestRestorePurchasesUseCase_FreshReceiptWins(t *testing.T) {
	uc, _, _, _, verifier := newRestoreFixture()
	verifier.fact = activeIOSFact("txn_2")

	result, err := uc.Execute(context.Background(), RestorePurchasesCommand{
		UserID:   1,
		Platform: subscription.PlatformIOS,
		Receipt:  "ZnJlc2gtcmVjZWlwdA",
	})

	assert.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "ZnJlc2gtcmVjZWlwdA", verifier.receivedReceipt)
}

func TestRestorePurchasesUseCase_NothingToRestore(t *testing.T) {
	uc, _, _, _, _ := newRestoreFixture()

	result, err := uc.Execute(context.Background(), RestorePurchasesCommand{UserID: 1})

	assert.Error(t, err)
	assert.Nil(t, result)
}
