// Package certification decides whether a user may operate a machine and
// whether a certification may be granted.
package certification

import "makerspace/internal/user"

type Reason string

const (
	ReasonAdminExempt  Reason = "admin-exempt"
	ReasonCertified    Reason = "certified"
	ReasonNotCertified Reason = "not-certified"
	ReasonNotRequired  Reason = "not-required"
)

type Result struct {
	Certified bool   `json:"certified"`
	Reason    Reason `json:"reason"`
}

// Evaluate never fails. Missing or blank certification entries count as not
// certified. A held certification for anything other than the safety course
// only counts when the safety course is held too; stored data may predate
// the grant-time check.
func Evaluate(u user.User, machineID string, requiresCertification bool) Result {
	if u.IsAdmin() {
		return Result{Certified: true, Reason: ReasonAdminExempt}
	}
	if !requiresCertification {
		return Result{Certified: true, Reason: ReasonNotRequired}
	}
	if !u.HasCertification(machineID) {
		return Result{Reason: ReasonNotCertified}
	}
	if machineID != user.SafetyCourseID && !u.HasSafetyCourse() {
		return Result{Reason: ReasonNotCertified}
	}
	return Result{Certified: true, Reason: ReasonCertified}
}
