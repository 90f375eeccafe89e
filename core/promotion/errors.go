package promotion

import (
	"errors"
	"fmt"
)

// ErrMultipleApproved means more than one package in the group holds
// Approved status. The invariant is violated, so the decider fails closed
// without touching any package; an operator has to intervene.
var ErrMultipleApproved = errors.New("more than one approved model package in group")

// MetricNotFoundError reports that a package lacks the metric chosen for
// comparison, or carries it in a form that cannot be compared
type MetricNotFoundError struct {
	PackageARN string
	Metric     string
	Reason     string
}

func (e *MetricNotFoundError) Error() string {
	return fmt.Sprintf("metric %q not usable on package %s: %s", e.Metric, e.PackageARN, e.Reason)
}
