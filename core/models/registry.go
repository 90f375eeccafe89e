package models

// ApprovalStatus is the approval state of a model package in the registry
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PendingManualApproval"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// MetricValue is a single named metric emitted by a training run.
// Names follow the "validation:<metric>" / "train:<metric>" convention.
type MetricValue struct {
	MetricName string  `json:"MetricName"`
	Value      float64 `json:"Value"`
}

// ModelPackage is a registered, versioned model with its approval state
// and the ad-hoc metadata the registry stores as strings
type ModelPackage struct {
	ARN            string
	Version        int
	Image          string
	ModelDataURL   string
	ApprovalStatus ApprovalStatus
	CustomMetadata map[string]string
}

// PackageSummary identifies one package in a group listing
type PackageSummary struct {
	ARN            string
	ApprovalStatus ApprovalStatus
}

// PackageInput holds the fields required to register a new model package
type PackageInput struct {
	Group          string
	Description    string
	Image          string
	ModelDataURL   string
	ApprovalStatus ApprovalStatus
	CustomMetadata map[string]string
}
