package entity

import (
	"strings"
	"time"
)

// EnrollmentKind distinguishes a course enrollment from a demo-class booking.
type EnrollmentKind string

const (
	KindCourse EnrollmentKind = "course"
	KindDemo   EnrollmentKind = "demo"
)

// EnrollmentKinds lists the accepted kinds.
var EnrollmentKinds = []string{string(KindCourse), string(KindDemo)}

// Enrollment is a lead captured by the enrollment or demo-booking form.
type Enrollment struct {
	ID            int64
	Kind          EnrollmentKind
	Name          string
	Email         string
	Phone         string
	Course        string
	PreferredDate string
	Message       string
	Source        string
	CreatedAt     time.Time
}

// ValidateEnrollment checks every field rule of a lead and returns all violations.
// A course is required for enrollments and optional for demo bookings.
func ValidateEnrollment(e Enrollment) ValidationResult {
	v := NewValidator().
		Required("name", e.Name).
		MinLength("name", e.Name, 2).
		MaxLength("name", e.Name, 100).
		Required("email", e.Email).
		Email("email", e.Email).
		MaxLength("email", e.Email, 254).
		Required("phone", e.Phone).
		CustomCode("phone", e.Phone, validPhone, CodeInvalidPhone, "phone must contain 10 to 15 digits").
		Required("kind", string(e.Kind)).
		OneOf("kind", string(e.Kind), EnrollmentKinds).
		MaxLength("course", e.Course, 100).
		MaxLength("message", e.Message, 1000)

	if e.Kind == KindCourse {
		v.Required("course", e.Course)
	}
	return v.Result()
}

// validPhone accepts digits with common separators and an optional leading +.
// An empty value passes; Required reports it.
func validPhone(phone string) bool {
	if phone == "" {
		return true
	}
	digits := 0
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// LeadSummary aggregates enrollment leads for the admin dashboard.
type LeadSummary struct {
	Total     int            `json:"total"`
	Courses   int            `json:"courses"`
	Demos     int            `json:"demos"`
	Last7Days int            `json:"last7Days"`
	ByCourse  map[string]int `json:"byCourse"`
}
