package subscription

import (
	"testing"
	"time"
)

func TestNewSubscription(t *testing.T) {
	sub, err := NewSubscription(42)
	if err != nil {
		t.Fatalf("NewSubscription(42) error = %v", err)
	}
	if sub.Plan() != PlanStarter {
		t.Errorf("new subscription plan = %q, want %q", sub.Plan(), PlanStarter)
	}
	if sub.Status() != StatusActive {
		t.Errorf("new subscription status = %q, want %q", sub.Status(), StatusActive)
	}

	if _, err := NewSubscription(0); err == nil {
		t.Error("NewSubscription(0) error = nil, want error")
	}
}

func TestSubscription_ApplyFact_FullReplace(t *testing.T) {
	sub, _ := NewSubscription(1)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	fact := &Fact{
		ExternalID:  "sub_abc",
		CustomerID:  "cus_abc",
		Plan:        PlanPro,
		Status:      StatusActive,
		ProductID:   "price_stylora_pro_monthly",
		PeriodStart: &start,
		PeriodEnd:   &end,
	}

	if err := sub.ApplyFact(PlatformWeb, fact); err != nil {
		t.Fatalf("ApplyFact() error = %v", err)
	}

	if sub.Plan() != PlanPro {
		t.Errorf("plan = %q, want %q", sub.Plan(), PlanPro)
	}
	if sub.Platform() != PlatformWeb {
		t.Errorf("platform = %q, want %q", sub.Platform(), PlatformWeb)
	}
	if sub.StripeSubscriptionID() != "sub_abc" {
		t.Errorf("stripe subscription id = %q, want sub_abc", sub.StripeSubscriptionID())
	}
	if sub.StripeCustomerID() != "cus_abc" {
		t.Errorf("stripe customer id = %q, want cus_abc", sub.StripeCustomerID())
	}
	if sub.CurrentPeriodEnd() == nil || !sub.CurrentPeriodEnd().Equal(end) {
		t.Errorf("period end = %v, want %v", sub.CurrentPeriodEnd(), end)
	}

	// A later fact replaces everything, including clearing the period when
	// the source reports none.
	later := &Fact{
		ExternalID: "sub_abc",
		Plan:       PlanPremium,
		Status:     StatusCancelled,
	}
	if err := sub.ApplyFact(PlatformWeb, later); err != nil {
		t.Fatalf("ApplyFact() error = %v", err)
	}
	if sub.Plan() != PlanPremium || sub.Status() != StatusCancelled {
		t.Errorf("state after replace = (%q, %q), want (premium, cancelled)", sub.Plan(), sub.Status())
	}
	if sub.CurrentPeriodEnd() != nil {
		t.Errorf("period end = %v, want nil after replace", sub.CurrentPeriodEnd())
	}
}

func TestSubscription_ApplyFact_CancellationIntent(t *testing.T) {
	truev := true

	tests := []struct {
		name           string
		initialCancel  bool
		fact           *Fact
		expectedCancel bool
	}{
		{
			name:          "explicit intent wins",
			initialCancel: false,
			fact: &Fact{
				ExternalID:        "sub_x",
				Plan:              PlanPro,
				Status:            StatusActive,
				CancelAtPeriodEnd: &truev,
			},
			expectedCancel: true,
		},
		{
			name:          "active fact without intent clears prior cancellation",
			initialCancel: true,
			fact: &Fact{
				ExternalID: "sub_x",
				Plan:       PlanPro,
				Status:     StatusActive,
			},
			expectedCancel: false,
		},
		{
			name:          "non-active fact without intent keeps prior flag",
			initialCancel: true,
			fact: &Fact{
				ExternalID: "sub_x",
				Plan:       PlanPro,
				Status:     StatusExpired,
			},
			expectedCancel: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _ := NewSubscription(1)
			sub.SetCancelAtPeriodEnd(tt.initialCancel)

			if err := sub.ApplyFact(PlatformWeb, tt.fact); err != nil {
				t.Fatalf("ApplyFact() error = %v", err)
			}
			if sub.CancelAtPeriodEnd() != tt.expectedCancel {
				t.Errorf("cancelAtPeriodEnd = %v, want %v", sub.CancelAtPeriodEnd(), tt.expectedCancel)
			}
		})
	}
}

func TestSubscription_ApplyFact_IOSFieldRouting(t *testing.T) {
	sub, _ := NewSubscription(1)

	fact := &Fact{
		ExternalID: "1000000123456789",
		Plan:       PlanPro,
		Status:     StatusActive,
		ProductID:  "com.stylora.app.pro.monthly",
		Receipt:    "base64receipt",
	}

	if err := sub.ApplyFact(PlatformIOS, fact); err != nil {
		t.Fatalf("ApplyFact() error = %v", err)
	}

	if sub.IAPOriginalTransactionID() != "1000000123456789" {
		t.Errorf("iap original transaction id = %q", sub.IAPOriginalTransactionID())
	}
	if sub.IAPProductID() != "com.stylora.app.pro.monthly" {
		t.Errorf("iap product id = %q", sub.IAPProductID())
	}
	if sub.IAPReceipt() != "base64receipt" {
		t.Errorf("iap receipt = %q", sub.IAPReceipt())
	}
	if sub.StripeSubscriptionID() != "" {
		t.Errorf("stripe subscription id = %q, want empty for ios fact", sub.StripeSubscriptionID())
	}

	// A later ios fact without a receipt keeps the stored one.
	fact2 := &Fact{
		ExternalID: "1000000123456789",
		Plan:       PlanPro,
		Status:     StatusExpired,
		ProductID:  "com.stylora.app.pro.monthly",
	}
	if err := sub.ApplyFact(PlatformIOS, fact2); err != nil {
		t.Fatalf("ApplyFact() error = %v", err)
	}
	if sub.IAPReceipt() != "base64receipt" {
		t.Errorf("iap receipt = %q, want stored receipt retained", sub.IAPReceipt())
	}
}

func TestSubscription_ApplyFact_Invalid(t *testing.T) {
	sub, _ := NewSubscription(1)

	if err := sub.ApplyFact(PlatformUnknown, validTestFact()); err == nil {
		t.Error("ApplyFact with unknown platform error = nil, want error")
	}
	if err := sub.ApplyFact(PlatformWeb, &Fact{Plan: PlanPro, Status: StatusActive}); err == nil {
		t.Error("ApplyFact with invalid fact error = nil, want error")
	}
}

func TestSubscription_RefreshStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name           string
		setup          func(s *Subscription)
		changed        bool
		expectedStatus Status
	}{
		{
			name: "active past period end expires",
			setup: func(s *Subscription) {
				fact := &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusActive, PeriodEnd: &past}
				s.ApplyFact(PlatformWeb, fact)
			},
			changed:        true,
			expectedStatus: StatusExpired,
		},
		{
			name: "active within period untouched",
			setup: func(s *Subscription) {
				fact := &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusActive, PeriodEnd: &future}
				s.ApplyFact(PlatformWeb, fact)
			},
			changed:        false,
			expectedStatus: StatusActive,
		},
		{
			name:           "starter has no boundary",
			setup:          func(s *Subscription) {},
			changed:        false,
			expectedStatus: StatusActive,
		},
		{
			name: "already cancelled untouched",
			setup: func(s *Subscription) {
				fact := &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusCancelled, PeriodEnd: &past}
				s.ApplyFact(PlatformWeb, fact)
			},
			changed:        false,
			expectedStatus: StatusCancelled,
		},
		{
			name: "active with no period end untouched",
			setup: func(s *Subscription) {
				fact := &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusActive}
				s.ApplyFact(PlatformWeb, fact)
			},
			changed:        false,
			expectedStatus: StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _ := NewSubscription(1)
			tt.setup(sub)

			if got := sub.RefreshStatus(now); got != tt.changed {
				t.Errorf("RefreshStatus() = %v, want %v", got, tt.changed)
			}
			if sub.Status() != tt.expectedStatus {
				t.Errorf("status = %q, want %q", sub.Status(), tt.expectedStatus)
			}
		})
	}
}

func TestSubscription_GrantTrial(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 3, 0)

	t.Run("grants over implicit starter", func(t *testing.T) {
		sub, _ := NewSubscription(1)
		if err := sub.GrantTrial(PlanPro, now, end); err != nil {
			t.Fatalf("GrantTrial() error = %v", err)
		}
		if sub.Plan() != PlanPro || sub.Status() != StatusActive {
			t.Errorf("state = (%q, %q), want (pro, active)", sub.Plan(), sub.Status())
		}
		if sub.CurrentPeriodEnd() == nil || !sub.CurrentPeriodEnd().Equal(end) {
			t.Errorf("period end = %v, want %v", sub.CurrentPeriodEnd(), end)
		}
	})

	t.Run("refuses to overwrite an active paid plan", func(t *testing.T) {
		sub, _ := NewSubscription(1)
		future := now.AddDate(0, 1, 0)
		fact := &Fact{ExternalID: "sub_x", Plan: PlanPremium, Status: StatusActive, PeriodEnd: &future}
		sub.ApplyFact(PlatformWeb, fact)

		if err := sub.GrantTrial(PlanPro, now, end); err == nil {
			t.Error("GrantTrial over active premium error = nil, want error")
		}
	})

	t.Run("grants over an expired paid plan", func(t *testing.T) {
		sub, _ := NewSubscription(1)
		past := now.AddDate(0, -1, 0)
		fact := &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusExpired, PeriodEnd: &past}
		sub.ApplyFact(PlatformWeb, fact)

		if err := sub.GrantTrial(PlanPro, now, end); err != nil {
			t.Errorf("GrantTrial over expired plan error = %v", err)
		}
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		sub, _ := NewSubscription(1)
		if err := sub.GrantTrial(PlanPro, end, now); err == nil {
			t.Error("GrantTrial with end before start error = nil, want error")
		}
	})
}

func TestSubscription_IsActive(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		setup    func(s *Subscription)
		expected bool
	}{
		{"fresh starter active", func(s *Subscription) {}, true},
		{"paid within period", func(s *Subscription) {
			s.ApplyFact(PlatformWeb, &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusActive, PeriodEnd: &future})
		}, true},
		{"paid past period end", func(s *Subscription) {
			s.ApplyFact(PlatformWeb, &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusActive, PeriodEnd: &past})
		}, false},
		{"cancelled", func(s *Subscription) {
			s.ApplyFact(PlatformWeb, &Fact{ExternalID: "sub_x", Plan: PlanPro, Status: StatusCancelled, PeriodEnd: &future})
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _ := NewSubscription(1)
			tt.setup(sub)
			if got := sub.IsActive(now); got != tt.expected {
				t.Errorf("IsActive() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSubscription_VersionIncrements(t *testing.T) {
	sub, _ := NewSubscription(1)
	v := sub.Version()

	sub.SetCancelAtPeriodEnd(true)
	if sub.Version() != v+1 {
		t.Errorf("version = %d, want %d after change", sub.Version(), v+1)
	}

	// No-op writes do not bump the version.
	sub.SetCancelAtPeriodEnd(true)
	if sub.Version() != v+1 {
		t.Errorf("version = %d, want unchanged %d after no-op", sub.Version(), v+1)
	}
}
