package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/awa/go-iap/appstore"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/config"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// AppStoreVerifier implements the receipt verification port on the App
// Store verifyReceipt endpoint.
type AppStoreVerifier struct {
	cfg     *config.IAPConfig
	catalog *subscription.PlanCatalog
	client  *appstore.Client
	logger  logger.Interface
}

var _ billing.ReceiptVerifier = (*AppStoreVerifier)(nil)

func NewAppStoreVerifier(cfg *config.IAPConfig, catalog *subscription.PlanCatalog, logger logger.Interface) *AppStoreVerifier {
	client := appstore.New()
	if cfg.Sandbox {
		client.ProductionURL = appstore.SandboxURL
	}
	return &AppStoreVerifier{
		cfg:     cfg,
		catalog: catalog,
		client:  client,
		logger:  logger,
	}
}

// VerifyReceipt validates the receipt with the store and returns the best
// subscription fact it contains. The client falls back to the sandbox
// endpoint on status 21007 so TestFlight builds keep working against a
// production deployment.
func (v *AppStoreVerifier) VerifyReceipt(ctx context.Context, receiptData string) (*subscription.Fact, error) {
	if receiptData == "" {
		return nil, errors.NewValidationError("receipt data is required")
	}

	req := appstore.IAPRequest{
		ReceiptData: receiptData,
		Password:    v.cfg.SharedSecret,
	}

	resp := &appstore.IAPResponse{}
	if err := v.client.Verify(ctx, req, resp); err != nil {
		v.logger.Errorw("receipt verification request failed", "error", err)
		return nil, errors.NewUnavailableError("receipt verification unavailable", err.Error())
	}

	if err := appstore.HandleError(resp.Status); err != nil {
		v.logger.Warnw("receipt rejected by store", "status", resp.Status, "error", err)
		return nil, errors.NewValidationError("receipt rejected by store", err.Error())
	}

	if v.cfg.BundleID != "" && resp.Receipt.BundleID != v.cfg.BundleID {
		v.logger.Warnw("receipt bundle id mismatch",
			"expected", v.cfg.BundleID,
			"got", resp.Receipt.BundleID,
		)
		return nil, errors.NewValidationError("receipt belongs to another app")
	}

	entries := collectTransactions(resp)
	best := selectBestTransaction(entries, time.Now().UTC())
	if best == nil {
		return nil, nil
	}

	fact := &subscription.Fact{
		ExternalID:  best.OriginalTransactionID,
		ProductID:   best.ProductID,
		PeriodStart: best.PurchaseAt,
		PeriodEnd:   best.ExpiresAt,
		Receipt:     receiptData,
	}
	if best.Active {
		fact.Status = subscription.StatusActive
	} else {
		fact.Status = subscription.StatusExpired
	}

	plan, recognized := v.catalog.PlanForProductID(best.ProductID)
	if !recognized {
		v.logger.Warnw("unrecognized product id, defaulting plan",
			"product_id", best.ProductID,
			"plan", plan,
		)
	}
	fact.Plan = plan

	return fact, nil
}

// ReceiptTransaction is one decoded subscription transaction from a receipt.
type ReceiptTransaction struct {
	OriginalTransactionID string
	ProductID             string
	PurchaseAt            *time.Time
	ExpiresAt             *time.Time
	Active                bool
}

// collectTransactions flattens latest_receipt_info falling back to in_app.
func collectTransactions(resp *appstore.IAPResponse) []ReceiptTransaction {
	var out []ReceiptTransaction

	appendEntry := func(originalTxnID, productID, purchaseMS, expiresMS string) {
		entry := ReceiptTransaction{
			OriginalTransactionID: originalTxnID,
			ProductID:             productID,
			PurchaseAt:            parseMillis(purchaseMS),
			ExpiresAt:             parseMillis(expiresMS),
		}
		out = append(out, entry)
	}

	for _, info := range resp.LatestReceiptInfo {
		appendEntry(string(info.OriginalTransactionID), info.ProductID,
			info.PurchaseDate.PurchaseDateMS, info.ExpiresDate.ExpiresDateMS)
	}
	if len(out) == 0 {
		for _, info := range resp.Receipt.InApp {
			appendEntry(string(info.OriginalTransactionID), info.ProductID,
				info.PurchaseDate.PurchaseDateMS, info.ExpiresDate.ExpiresDateMS)
		}
	}

	return out
}

// selectBestTransaction picks the transaction that should drive the user's
// entitlement: an unexpired one with the latest expiry when any exists,
// otherwise the most recently expired one so restores still record history.
func selectBestTransaction(entries []ReceiptTransaction, now time.Time) *ReceiptTransaction {
	var best *ReceiptTransaction

	for i := range entries {
		e := &entries[i]
		if e.OriginalTransactionID == "" || e.ExpiresAt == nil {
			continue
		}
		e.Active = e.ExpiresAt.After(now)

		if best == nil {
			best = e
			continue
		}
		switch {
		case e.Active && !best.Active:
			best = e
		case e.Active == best.Active && e.ExpiresAt.After(*best.ExpiresAt):
			best = e
		}
	}

	return best
}

func parseMillis(ms string) *time.Time {
	if ms == "" {
		return nil
	}
	v, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(v).UTC()
	return &t
}
