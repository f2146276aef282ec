package certification

import (
	"strings"

	"makerspace/internal/apperr"
	"makerspace/internal/user"
)

// ErrSafetyCourseRequired is returned when a grant is attempted before the
// safety course. Callers redirect the user to SafetyCourseID.
var ErrSafetyCourseRequired = apperr.ValidationError{
	Code:    "SAFETY_COURSE_REQUIRED",
	Message: "complete the safety course before earning other certifications",
}

// CheckGrant validates a certification grant for machineID. Re-granting a
// held certification is allowed and is a no-op downstream.
func CheckGrant(u user.User, machineID string) error {
	machineID = strings.TrimSpace(machineID)
	if machineID == "" {
		return apperr.Validation("MACHINE_ID_REQUIRED", "machine id is required")
	}
	if machineID == user.SafetyCourseID || u.HasCertification(machineID) {
		return nil
	}
	if !u.HasSafetyCourse() {
		return ErrSafetyCourseRequired
	}
	return nil
}
