package subscription

// Plan identifies a subscription tier.
type Plan string

const (
	// PlanStarter is the implicit default when a user has no subscription row.
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

// ValidPlans is the set of recognized plans.
var ValidPlans = map[Plan]bool{
	PlanStarter: true,
	PlanPro:     true,
	PlanPremium: true,
}

func (p Plan) IsValid() bool {
	return ValidPlans[p]
}

func (p Plan) String() string {
	return string(p)
}

// Status is the subscription lifecycle status.
type Status string

const (
	StatusInactive  Status = "inactive"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// ValidStatuses is the set of recognized statuses.
var ValidStatuses = map[Status]bool{
	StatusInactive:  true,
	StatusActive:    true,
	StatusExpired:   true,
	StatusCancelled: true,
}

func (s Status) IsValid() bool {
	return ValidStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// Platform identifies which source last wrote a subscription record.
type Platform string

const (
	// PlatformUnknown is the zero value before any purchase has been observed.
	PlatformUnknown Platform = ""
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// UsesStripe reports whether the platform's subscription truth lives in the
// card-payment provider rather than the mobile purchase ledger.
func (p Platform) UsesStripe() bool {
	return p == PlatformWeb || p == PlatformAndroid
}

// Feature identifies a metered feature gated by the entitlement guard.
type Feature string

const (
	FeatureAIGeneration Feature = "ai_generation"
	FeatureTryOn        Feature = "try_on_render"
	FeatureWeeklyPlan   Feature = "weekly_plan"
)

// MeteredFeatures lists every feature tracked by the usage counters.
var MeteredFeatures = []Feature{
	FeatureAIGeneration,
	FeatureTryOn,
	FeatureWeeklyPlan,
}

func (f Feature) IsValid() bool {
	switch f {
	case FeatureAIGeneration, FeatureTryOn, FeatureWeeklyPlan:
		return true
	}
	return false
}

func (f Feature) String() string {
	return string(f)
}
