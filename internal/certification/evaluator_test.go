package certification

import (
	"errors"
	"testing"

	"makerspace/internal/user"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		u        user.User
		machine  string
		requires bool
		want     Result
	}{
		{
			name:     "admin without certifications",
			u:        user.User{Role: user.RoleAdmin},
			machine:  "laser-cutter",
			requires: true,
			want:     Result{Certified: true, Reason: ReasonAdminExempt},
		},
		{
			name:     "not required",
			u:        user.User{Role: user.RoleStandard},
			machine:  "soldering-station",
			requires: false,
			want:     Result{Certified: true, Reason: ReasonNotRequired},
		},
		{
			name:     "certified with safety course",
			u:        user.User{Certifications: []string{"safety-course", "laser-cutter"}},
			machine:  "laser-cutter",
			requires: true,
			want:     Result{Certified: true, Reason: ReasonCertified},
		},
		{
			name:     "missing certification",
			u:        user.User{Certifications: []string{"safety-course"}},
			machine:  "laser-cutter",
			requires: true,
			want:     Result{Reason: ReasonNotCertified},
		},
		{
			name:     "held certification without safety course",
			u:        user.User{Certifications: []string{"laser-cutter"}},
			machine:  "laser-cutter",
			requires: true,
			want:     Result{Reason: ReasonNotCertified},
		},
		{
			name:     "safety course itself",
			u:        user.User{Certifications: []string{"safety-course"}},
			machine:  user.SafetyCourseID,
			requires: true,
			want:     Result{Certified: true, Reason: ReasonCertified},
		},
		{
			name:     "nil certifications",
			u:        user.User{},
			machine:  "laser-cutter",
			requires: true,
			want:     Result{Reason: ReasonNotCertified},
		},
		{
			name:     "blank machine id never matches",
			u:        user.User{Certifications: []string{"", " ", "safety-course"}},
			machine:  "",
			requires: true,
			want:     Result{Reason: ReasonNotCertified},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.u, tc.machine, tc.requires)
			if got != tc.want {
				t.Fatalf("Evaluate() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEvaluate_AdminAlwaysCertified(t *testing.T) {
	admin := user.User{Role: user.RoleAdmin}
	for _, id := range []string{"", "laser-cutter", user.SafetyCourseID, "cnc"} {
		for _, requires := range []bool{true, false} {
			if got := Evaluate(admin, id, requires); !got.Certified {
				t.Fatalf("admin not certified for %q (requires=%v): %+v", id, requires, got)
			}
		}
	}
}

func TestCheckGrant(t *testing.T) {
	fresh := user.User{}
	if err := CheckGrant(fresh, user.SafetyCourseID); err != nil {
		t.Fatalf("safety course grant: %v", err)
	}
	if err := CheckGrant(fresh, "laser-cutter"); !errors.Is(err, ErrSafetyCourseRequired) {
		t.Fatalf("expected ErrSafetyCourseRequired, got %v", err)
	}

	trained := user.User{Certifications: []string{user.SafetyCourseID}}
	if err := CheckGrant(trained, "laser-cutter"); err != nil {
		t.Fatalf("grant after safety course: %v", err)
	}

	if err := CheckGrant(trained, "  "); err == nil {
		t.Fatalf("expected error for blank machine id")
	}
}
