package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeApplicantCreated = "applicant.created"
	EventTypeApplicantUpdated = "applicant.updated"
	EventTypeApplicantDeleted = "applicant.deleted"
	EventTypeUserCreated      = "user.created"
)

type ApplicantCreatedEvent struct {
	BaseEvent
	ApplicantID string `json:"applicant_id"`
	AutoNumber  int64  `json:"auto_number"`
	CollectedBy string `json:"collected_by"`
}

func NewApplicantCreatedEvent(applicantID string, autoNumber int64, collectedBy string) *ApplicantCreatedEvent {
	return &ApplicantCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicantCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"applicant_id": applicantID,
				"auto_number":  autoNumber,
				"collected_by": collectedBy,
			},
		},
		ApplicantID: applicantID,
		AutoNumber:  autoNumber,
		CollectedBy: collectedBy,
	}
}

// ApplicantUpdatedEvent records an elevated-path mutation for the audit trail.
type ApplicantUpdatedEvent struct {
	BaseEvent
	ApplicantID   string   `json:"applicant_id"`
	ChangedFields []string `json:"changed_fields"`
	ActorID       string   `json:"actor_id"`
}

func NewApplicantUpdatedEvent(applicantID string, changedFields []string, actorID string) *ApplicantUpdatedEvent {
	return &ApplicantUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicantUpdated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"applicant_id":   applicantID,
				"changed_fields": changedFields,
				"actor_id":       actorID,
			},
		},
		ApplicantID:   applicantID,
		ChangedFields: changedFields,
		ActorID:       actorID,
	}
}

type ApplicantDeletedEvent struct {
	BaseEvent
	ApplicantID string `json:"applicant_id"`
	AutoNumber  int64  `json:"auto_number"`
	ActorID     string `json:"actor_id"`
}

func NewApplicantDeletedEvent(applicantID string, autoNumber int64, actorID string) *ApplicantDeletedEvent {
	return &ApplicantDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicantDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"applicant_id": applicantID,
				"auto_number":  autoNumber,
				"actor_id":     actorID,
			},
		},
		ApplicantID: applicantID,
		AutoNumber:  autoNumber,
		ActorID:     actorID,
	}
}

type UserCreatedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewUserCreatedEvent(userID, email, role string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"role":    role,
			},
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
}
