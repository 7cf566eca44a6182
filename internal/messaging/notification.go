package messaging

import (
	"encoding/json"
	"errors"
)

// Notification is the payload handed to the notification channel when an
// account is created: the address to contact and the confirmation token
// proving control of it. Ownership transfers to the transport on publish.
type Notification struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Validation errors for notification payloads.
var (
	ErrEmptyNotificationEmail = errors.New("notification email cannot be empty")
	ErrEmptyNotificationToken = errors.New("notification token cannot be empty")
)

// Validate checks that the notification carries both required fields.
func (n Notification) Validate() error {
	if n.Email == "" {
		return ErrEmptyNotificationEmail
	}
	if n.Token == "" {
		return ErrEmptyNotificationToken
	}
	return nil
}

// Marshal serializes the notification to its wire format.
func (n Notification) Marshal() ([]byte, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(n)
}

// UnmarshalNotification decodes a notification from its wire format.
func UnmarshalNotification(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, err
	}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	return n, nil
}
