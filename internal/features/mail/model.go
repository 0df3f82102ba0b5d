package mail

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

type Attachment struct {
	Filename    string
	ContentType string // derived from the filename when empty
	Content     []byte
}

// Message is one outbound mail. At least one of Text or HTML should be set.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Email is the delivery log entry kept for every send attempt.
type Email struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From        string             `bson:"from" json:"from"`
	To          []string           `bson:"to" json:"to"`
	Subject     string             `bson:"subject" json:"subject"`
	Attachments []string           `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Status      EmailStatus        `bson:"status" json:"status"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	ErrorMsg    string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	SentAt      *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
}
