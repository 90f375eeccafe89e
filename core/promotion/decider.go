package promotion

import (
	"context"
	"fmt"
	"strconv"

	"model-pipeline/core/models"
)

// Logger is the minimal structured logger the decider reports through
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Decider decides whether a newly registered candidate package displaces
// the currently approved one, comparing a single named metric. The
// candidate has to be strictly better; on equality production keeps its
// approval.
type Decider struct {
	registry ModelRegistry
	log      Logger
}

// NewDecider creates a decider over the given registry
func NewDecider(registry ModelRegistry, log Logger) *Decider {
	return &Decider{registry: registry, log: log}
}

// Outcome reports which package ended up approved after a decision
type Outcome struct {
	ApprovedARN string
	RejectedARN string
	ColdStart   bool
	Direction   Direction
}

// Decide runs the promotion decision for candidateARN within group,
// comparing metricName. All reads happen before any status write; a failed
// read leaves every package untouched.
func (d *Decider) Decide(ctx context.Context, group, candidateARN, metricName string) (Outcome, error) {
	approved, err := d.registry.ListPackages(ctx, group, models.ApprovalApproved)
	if err != nil {
		return Outcome{}, fmt.Errorf("list approved packages: %w", err)
	}

	switch {
	case len(approved) > 1:
		d.log.Error("approved-package invariant violated", "group", group, "count", len(approved))
		return Outcome{}, fmt.Errorf("group %s: %w", group, ErrMultipleApproved)

	case len(approved) == 0:
		// Cold start: nothing serves production yet, the candidate wins
		// without a comparison.
		if err := d.registry.UpdateApprovalStatus(ctx, candidateARN, models.ApprovalApproved); err != nil {
			return Outcome{}, fmt.Errorf("approve first package: %w", err)
		}
		d.log.Info("first model package approved, no production model existed", "package", candidateARN)
		return Outcome{ApprovedARN: candidateARN, ColdStart: true}, nil
	}

	productionARN := approved[0].ARN

	if productionARN == candidateARN {
		// Re-run against the package already serving production. There is
		// nothing to compare and no status to change.
		d.log.Info("candidate already approved", "package", candidateARN)
		return Outcome{ApprovedARN: candidateARN}, nil
	}

	productionValue, err := d.metricValue(ctx, productionARN, metricName)
	if err != nil {
		return Outcome{}, err
	}
	candidateValue, err := d.metricValue(ctx, candidateARN, metricName)
	if err != nil {
		return Outcome{}, err
	}

	direction := ClassifyMetric(metricName)
	candidateWins := false
	if direction == Maximize {
		candidateWins = candidateValue > productionValue
	} else {
		candidateWins = candidateValue < productionValue
	}
	d.log.Info("compared models",
		"metric", metricName, "direction", string(direction),
		"production", productionValue, "candidate", candidateValue,
		"candidateWins", candidateWins)

	winner, loser := productionARN, candidateARN
	if candidateWins {
		winner, loser = candidateARN, productionARN
	}

	// The winner is written first: re-approving an already approved package
	// is a harmless no-op, while rejecting first could leave the group
	// without an approved package if the second write fails.
	if err := d.registry.UpdateApprovalStatus(ctx, winner, models.ApprovalApproved); err != nil {
		return Outcome{}, fmt.Errorf("approve winner %s: %w", winner, err)
	}
	if err := d.registry.UpdateApprovalStatus(ctx, loser, models.ApprovalRejected); err != nil {
		return Outcome{}, fmt.Errorf("reject loser %s: %w", loser, err)
	}

	return Outcome{ApprovedARN: winner, RejectedARN: loser, Direction: direction}, nil
}

// metricValue reads one named metric off a package's custom metadata, where
// the registry stores metric values as strings
func (d *Decider) metricValue(ctx context.Context, arn, metricName string) (float64, error) {
	pkg, err := d.registry.DescribePackage(ctx, arn)
	if err != nil {
		return 0, fmt.Errorf("describe package %s: %w", arn, err)
	}
	raw, ok := pkg.CustomMetadata[metricName]
	if !ok {
		return 0, &MetricNotFoundError{PackageARN: arn, Metric: metricName, Reason: "not present in package metadata"}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &MetricNotFoundError{PackageARN: arn, Metric: metricName, Reason: fmt.Sprintf("value %q is not numeric", raw)}
	}
	return value, nil
}
