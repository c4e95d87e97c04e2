package domain

import "fmt"

// CostMilliCentsPerLine is the per-line transformation charge: $0.003,
// i.e. 0.3 cents, expressed in milli-cents for exact integer accumulation.
const CostMilliCentsPerLine MilliCents = 300

// billingTextTemplate renders the cost estimate shown to the user before a
// transformation is submitted. The dollar amount always carries exactly two
// decimal digits.
const billingTextTemplate = "%d lines of code were submitted for transformation. " +
	"If you exceed the lines of code included in your subscription, you may be charged %s " +
	"for this transformation. You will only be charged once the transformation completes. " +
	"The estimate is based on the lines of code submitted and may differ from the final charge."

// BillingEstimate is the projected charge for transforming a code base of a
// given size. Charges accumulate in milli-cents and round to whole cents
// only at display time.
type BillingEstimate struct {
	LinesOfCode int64
	Charge      MilliCents
}

// NewBillingEstimate computes the estimate for the given line count.
// Returns ErrInvalidLineCount for negative input.
func NewBillingEstimate(linesOfCode int64) (BillingEstimate, error) {
	if linesOfCode < 0 {
		return BillingEstimate{}, fmt.Errorf("%w: %d", ErrInvalidLineCount, linesOfCode)
	}
	return BillingEstimate{
		LinesOfCode: linesOfCode,
		Charge:      CostMilliCentsPerLine * MilliCents(linesOfCode),
	}, nil
}

// ChargeText formats the charge as a dollar amount with exactly two decimal
// digits (e.g., 376 lines → "$1.13").
func (b BillingEstimate) ChargeText() string {
	return b.Charge.Cents().String()
}

// BillingText renders the full user-facing estimate message for the given
// line count. Deterministic and defined for all non-negative inputs;
// negative inputs are clamped to zero lines.
func BillingText(linesOfCode int64) string {
	est, err := NewBillingEstimate(linesOfCode)
	if err != nil {
		est = BillingEstimate{}
	}
	return fmt.Sprintf(billingTextTemplate, est.LinesOfCode, est.ChargeText())
}
