// Package record defines the absence request entity that filters are
// evaluated against, and the dataset provider contract.
package record

import (
	"context"
	"time"
)

// Status is the lifecycle state of an absence request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

var statusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
	StatusCancelled: "Cancelled",
}

// Label returns the display label.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// EmploymentType classifies the employee's contract.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContractor EmploymentType = "contractor"
)

// EmploymentTypes lists every employment type in display order.
var EmploymentTypes = []EmploymentType{EmploymentFullTime, EmploymentPartTime, EmploymentContractor}

var employmentLabels = map[EmploymentType]string{
	EmploymentFullTime:   "Full-time",
	EmploymentPartTime:   "Part-time",
	EmploymentContractor: "Contractor",
}

// Label returns the display label.
func (e EmploymentType) Label() string {
	if l, ok := employmentLabels[e]; ok {
		return l
	}
	return string(e)
}

// Dimension is a reference to an organisational entity such as a
// department or cost center.
type Dimension struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Record is an immutable absence request.
type Record struct {
	ID             string         `json:"id" yaml:"id"`
	Identifier     string         `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Employee       string         `json:"employee,omitempty" yaml:"employee,omitempty"`
	Status         Status         `json:"status" yaml:"status"`
	StartDate      time.Time      `json:"start_date" yaml:"start_date"`
	EndDate        time.Time      `json:"end_date" yaml:"end_date"`
	Department     Dimension      `json:"department" yaml:"department"`
	CostCenter     Dimension      `json:"cost_center" yaml:"cost_center"`
	Location       Dimension      `json:"location" yaml:"location"`
	WorkRole       Dimension      `json:"work_role" yaml:"work_role"`
	Manager        *Dimension     `json:"manager,omitempty" yaml:"manager,omitempty"`
	EmploymentType EmploymentType `json:"employment_type" yaml:"employment_type"`
	// Tags maps custom tag keys to tag value keys.
	Tags map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Provider supplies the full, unfiltered, ordered dataset. Callers treat
// the returned slice as read-only.
type Provider interface {
	Records(ctx context.Context) ([]*Record, error)
}

// Static is a Provider over a fixed slice.
type Static []*Record

// Records returns the slice itself.
func (s Static) Records(_ context.Context) ([]*Record, error) { return s, nil }

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) ([]*Record, error)

// Records calls f.
func (f ProviderFunc) Records(ctx context.Context) ([]*Record, error) { return f(ctx) }
