// Package access talks to the membership backend that decides whether a
// scanned pass may enter at a location.
package access

import (
	"fmt"
	"time"
)

// ReasonNoLocation is the denial shown when scanning is attempted before a
// location is chosen.
const ReasonNoLocation = "no location selected"

// Outcome is the result of one scan attempt: either Allowed (Subject and Plan
// set) or Denied (Reason set).
type Outcome struct {
	Allowed    bool      `json:"allowed"`
	Subject    string    `json:"subject,omitempty"`
	Plan       string    `json:"plan,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	MemberID   int       `json:"member_id,omitempty"`
	PlanID     string    `json:"plan_id,omitempty"`
	LocationID string    `json:"location_id,omitempty"`
	Payload    string    `json:"payload,omitempty"`
	At         time.Time `json:"at"`
}

// Allowed builds an allowed outcome.
func Allowed(subject, plan string) Outcome {
	return Outcome{Allowed: true, Subject: subject, Plan: plan, At: time.Now()}
}

// Denied builds a denial.
func Denied(reason string) Outcome {
	return Outcome{Reason: reason, At: time.Now()}
}

// String renders the outcome the way the operator sees it.
func (o Outcome) String() string {
	if o.Allowed {
		return fmt.Sprintf("allowed: %s (%s)", o.Subject, o.Plan)
	}
	return "denied: " + o.Reason
}

// Location is a wash site a scanner can be bound to.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
