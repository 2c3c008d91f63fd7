package domain

// AgingBucket classifies how long a product has sat in the warehouse.
// Labels are the Japanese report labels used by the warehouse team.
type AgingBucket string

const (
	AgingBucket0To30    AgingBucket = "0-30日"
	AgingBucket31To60   AgingBucket = "31-60日"
	AgingBucket61To90   AgingBucket = "61-90日"
	AgingBucket91To180  AgingBucket = "91-180日"
	AgingBucket181To365 AgingBucket = "181-365日"
	AgingBucketOver365  AgingBucket = "365日超"
)

// AgingBucketOrder lists every bucket in report order.
var AgingBucketOrder = []AgingBucket{
	AgingBucket0To30,
	AgingBucket31To60,
	AgingBucket61To90,
	AgingBucket91To180,
	AgingBucket181To365,
	AgingBucketOver365,
}

// ExpiryStatus classifies a product's earliest expiry date relative to
// the run's reference date.
type ExpiryStatus string

const (
	ExpiryStatusNone       ExpiryStatus = ""
	ExpiryStatusExpired    ExpiryStatus = "期限切れ"
	ExpiryStatusNearExpiry ExpiryStatus = "3ヶ月以内"
	ExpiryStatusHasExpiry  ExpiryStatus = "期限あり"
)
