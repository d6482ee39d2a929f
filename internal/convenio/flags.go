package convenio

// Bucket is an aging range read from the disbursement and last-payment
// columns. The ordering of the range values matters: a later bucket implies
// every earlier threshold.
type Bucket int

const (
	BucketUnknown Bucket = iota
	BucketUpTo90
	Bucket90To180
	Bucket180To365
	BucketOver365
	BucketNoDisbursement
)

var bucketSpellings = map[string]Bucket{
	"ate 90 dias":          BucketUpTo90,
	"0 a 90 dias":          BucketUpTo90,
	"0 90 dias":            BucketUpTo90,
	"menos de 90 dias":     BucketUpTo90,
	"up to 90 days":        BucketUpTo90,
	"90 180 dias":          Bucket90To180,
	"90 a 180 dias":        Bucket90To180,
	"de 90 a 180 dias":     Bucket90To180,
	"91 a 180 dias":        Bucket90To180,
	"90 180 days":          Bucket90To180,
	"180 365 dias":         Bucket180To365,
	"180 a 365 dias":       Bucket180To365,
	"de 180 a 365 dias":    Bucket180To365,
	"181 a 365 dias":       Bucket180To365,
	"180 365 days":         Bucket180To365,
	"acima de 365 dias":    BucketOver365,
	"mais de 365 dias":     BucketOver365,
	"superior a 365 dias":  BucketOver365,
	"over 365 days":        BucketOver365,
	"more than 365 days":   BucketOver365,
	"sem desembolso":       BucketNoDisbursement,
	"nao houve desembolso": BucketNoDisbursement,
	"sem pagamento":        BucketNoDisbursement,
	"no disbursement":      BucketNoDisbursement,
}

// ClassifyBucket maps bucket text onto a Bucket. Unrecognized text is
// BucketUnknown, which trips no threshold.
func ClassifyBucket(s string) Bucket {
	return bucketSpellings[NormalizeHeader(s)]
}

// exceeds reports whether b lies at or beyond the threshold bucket.
func (b Bucket) exceeds(threshold Bucket) bool {
	return b >= threshold && b <= BucketOver365
}

// Flags are the derived queue indicators. They are recomputed on every
// table rebuild and never edited.
type Flags struct {
	Over90NoExec                bool `json:"over_90_no_exec"`
	Over180NoExec               bool `json:"over_180_no_exec"`
	Over365NoExec               bool `json:"over_365_no_exec"`
	Over90LastPayment           bool `json:"over_90_last_payment"`
	Over180LastPayment          bool `json:"over_180_last_payment"`
	LastPaymentIsNoDisbursement bool `json:"last_payment_is_no_disbursement"`
	NoPayment150                bool `json:"no_payment_150_flag"`
}

// Flag column names.
const (
	FlagOver90NoExec                = "over_90_no_exec"
	FlagOver180NoExec               = "over_180_no_exec"
	FlagOver365NoExec               = "over_365_no_exec"
	FlagOver90LastPayment           = "over_90_last_payment"
	FlagOver180LastPayment          = "over_180_last_payment"
	FlagLastPaymentIsNoDisbursement = "last_payment_is_no_disbursement"
	FlagNoPayment150                = "no_payment_150_flag"
)

// FlagColumns names the flag columns appended to the consolidated table.
var FlagColumns = []string{
	FlagOver90NoExec,
	FlagOver180NoExec,
	FlagOver365NoExec,
	FlagOver90LastPayment,
	FlagOver180LastPayment,
	FlagLastPaymentIsNoDisbursement,
	FlagNoPayment150,
}

// Get returns the flag stored under the column name.
func (f Flags) Get(column string) (bool, bool) {
	switch column {
	case FlagOver90NoExec:
		return f.Over90NoExec, true
	case FlagOver180NoExec:
		return f.Over180NoExec, true
	case FlagOver365NoExec:
		return f.Over365NoExec, true
	case FlagOver90LastPayment:
		return f.Over90LastPayment, true
	case FlagOver180LastPayment:
		return f.Over180LastPayment, true
	case FlagLastPaymentIsNoDisbursement:
		return f.LastPaymentIsNoDisbursement, true
	case FlagNoPayment150:
		return f.NoPayment150, true
	}
	return false, false
}

// ComputeFlags derives the queue flags from the record's bucket and
// indicator columns.
func ComputeFlags(r *Record) Flags {
	exec := bucketOf(r.DisbursementGap)
	paid := bucketOf(r.LastPaymentGap)
	return Flags{
		Over90NoExec:                exec.exceeds(Bucket90To180),
		Over180NoExec:               exec.exceeds(Bucket180To365),
		Over365NoExec:               exec.exceeds(BucketOver365),
		Over90LastPayment:           paid.exceeds(Bucket90To180),
		Over180LastPayment:          paid.exceeds(Bucket180To365),
		LastPaymentIsNoDisbursement: paid == BucketNoDisbursement,
		NoPayment150:                r.NoPayment150 != nil && *r.NoPayment150 == IndicatorYes,
	}
}

func bucketOf(v *string) Bucket {
	if v == nil {
		return BucketUnknown
	}
	return ClassifyBucket(*v)
}
