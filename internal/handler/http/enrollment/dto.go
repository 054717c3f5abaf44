// Package enrollment provides the HTTP handlers for the enrollment and
// demo-booking forms and the admin lead listing.
package enrollment

import (
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	enrollUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/enrollment"
)

// DTO is the JSON representation of a lead.
type DTO struct {
	ID            int64     `json:"id" example:"42"`
	Kind          string    `json:"kind" example:"course"`
	Name          string    `json:"name" example:"Asha Verma"`
	Email         string    `json:"email" example:"asha@example.com"`
	Phone         string    `json:"phone" example:"+91 98765 43210"`
	Course        string    `json:"course,omitempty" example:"Full Stack Development"`
	PreferredDate string    `json:"preferredDate,omitempty" example:"2026-04-02"`
	Message       string    `json:"message,omitempty"`
	Source        string    `json:"source" example:"website"`
	CreatedAt     time.Time `json:"createdAt" example:"2026-03-01T10:00:00Z"`
}

// Request is the body posted by the public forms.
type Request struct {
	Kind          string `json:"kind" example:"demo"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Course        string `json:"course"`
	PreferredDate string `json:"preferredDate"`
	Message       string `json:"message"`
	Source        string `json:"source"`
}

// CreatedResponse acknowledges a stored lead without echoing personal data.
type CreatedResponse struct {
	ID      int64  `json:"id" example:"42"`
	Kind    string `json:"kind" example:"demo"`
	Message string `json:"message" example:"Thank you! Our team will contact you shortly."`
}

func (r Request) input() enrollUC.Input {
	return enrollUC.Input{
		Kind:          entity.EnrollmentKind(r.Kind),
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Course:        r.Course,
		PreferredDate: r.PreferredDate,
		Message:       r.Message,
		Source:        r.Source,
	}
}

func toDTO(e *entity.Enrollment) DTO {
	return DTO{
		ID:            e.ID,
		Kind:          string(e.Kind),
		Name:          e.Name,
		Email:         e.Email,
		Phone:         e.Phone,
		Course:        e.Course,
		PreferredDate: e.PreferredDate,
		Message:       e.Message,
		Source:        e.Source,
		CreatedAt:     e.CreatedAt,
	}
}
