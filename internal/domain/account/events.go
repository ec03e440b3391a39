package account

import (
	"fmt"
	"time"

	"github.com/orris-inc/licensing/internal/domain/shared/events"
)

const EventTypeUserCreated = "account.user.created"

// UserCreatedEvent is emitted when a roster import creates an account.
// Password holds the initial plain password for the welcome mail.
type UserCreatedEvent struct {
	events.BaseEvent
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Password  string `json:"-"`
	CreatedBy uint   `json:"created_by"`
}

func NewUserCreatedEvent(u *User, password string, createdBy uint) UserCreatedEvent {
	return UserCreatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("user:%d", u.ID()),
			EventType:   EventTypeUserCreated,
			OccurredAt:  time.Now(),
			Version:     1,
		},
		UserID:    u.ID(),
		Username:  u.Username(),
		Email:     u.Email(),
		FullName:  u.FullName(),
		Password:  password,
		CreatedBy: createdBy,
	}
}
