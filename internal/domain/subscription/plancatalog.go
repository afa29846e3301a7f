package subscription

const (
	// UnlimitedQuota marks a feature without a monthly cap.
	UnlimitedQuota int64 = -1

	// UnlimitedRemaining is the sentinel reported as remaining quota for
	// unlimited features. It is never decremented.
	UnlimitedRemaining int64 = 999999
)

// defaultPlanLimits maps each plan to its monthly per-feature quotas.
// New plans and quota changes are data edits here, not logic changes.
var defaultPlanLimits = map[Plan]map[Feature]int64{
	PlanStarter: {
		FeatureAIGeneration: 3,
		FeatureTryOn:        1,
		FeatureWeeklyPlan:   1,
	},
	PlanPro: {
		FeatureAIGeneration: UnlimitedQuota,
		FeatureTryOn:        30,
		FeatureWeeklyPlan:   UnlimitedQuota,
	},
	PlanPremium: {
		FeatureAIGeneration: UnlimitedQuota,
		FeatureTryOn:        UnlimitedQuota,
		FeatureWeeklyPlan:   UnlimitedQuota,
	},
}

// defaultProductPlans maps external product/price identifiers (Stripe price
// ids and App Store product ids) to plans.
var defaultProductPlans = map[string]Plan{
	"price_stylora_pro_monthly":     PlanPro,
	"price_stylora_pro_yearly":      PlanPro,
	"price_stylora_premium_monthly": PlanPremium,
	"price_stylora_premium_yearly":  PlanPremium,

	"com.stylora.app.pro.monthly":     PlanPro,
	"com.stylora.app.pro.yearly":      PlanPro,
	"com.stylora.app.premium.monthly": PlanPremium,
	"com.stylora.app.premium.yearly":  PlanPremium,
}

// PlanCatalog is an immutable lookup table built once at process start.
type PlanCatalog struct {
	limits       map[Plan]map[Feature]int64
	productPlans map[string]Plan
}

// NewPlanCatalog builds a catalog from the compiled defaults merged with
// configuration-supplied product mappings (config wins on conflict).
func NewPlanCatalog(extraProductPlans map[string]Plan) *PlanCatalog {
	limits := make(map[Plan]map[Feature]int64, len(defaultPlanLimits))
	for plan, features := range defaultPlanLimits {
		fl := make(map[Feature]int64, len(features))
		for f, q := range features {
			fl[f] = q
		}
		limits[plan] = fl
	}

	products := make(map[string]Plan, len(defaultProductPlans)+len(extraProductPlans))
	for id, plan := range defaultProductPlans {
		products[id] = plan
	}
	for id, plan := range extraProductPlans {
		if plan.IsValid() {
			products[id] = plan
		}
	}

	return &PlanCatalog{
		limits:       limits,
		productPlans: products,
	}
}

// LimitsFor returns a copy of the per-feature quotas for the given plan.
// Unknown plans get the starter quotas.
func (c *PlanCatalog) LimitsFor(plan Plan) map[Feature]int64 {
	features, ok := c.limits[plan]
	if !ok {
		features = c.limits[PlanStarter]
	}
	out := make(map[Feature]int64, len(features))
	for f, q := range features {
		out[f] = q
	}
	return out
}

// LimitFor returns the monthly quota for one feature of a plan.
// Features missing from the table have quota 0.
func (c *PlanCatalog) LimitFor(plan Plan, feature Feature) int64 {
	features, ok := c.limits[plan]
	if !ok {
		features = c.limits[PlanStarter]
	}
	return features[feature]
}

// PlanForProductID maps an external product/price id to a plan. Unrecognized
// ids map to the mid-tier plan rather than failing closed: a verified
// purchase must still grant access even when the catalog is stale. The
// second return value reports whether the id was recognized so callers can
// log stale catalogs.
func (c *PlanCatalog) PlanForProductID(id string) (Plan, bool) {
	if plan, ok := c.productPlans[id]; ok {
		return plan, true
	}
	return PlanPro, false
}

// Remaining computes the remaining quota given a plan, feature and the used
// count for the current month.
func (c *PlanCatalog) Remaining(plan Plan, feature Feature, used int64) int64 {
	limit := c.LimitFor(plan, feature)
	if limit < 0 {
		return UnlimitedRemaining
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
