package mail

import (
	"context"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type EmailLog interface {
	Create(ctx context.Context, email *Email) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus, attempts int, errorMsg string) error
}

type EmailRepository struct {
	col *mongo.Collection
}

func NewEmailRepository(db *database.MongodbDB) EmailLog {
	return &EmailRepository{
		col: db.DB.Collection("emails"),
	}
}

func (r *EmailRepository) Create(ctx context.Context, email *Email) error {
	email.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, email)
	return err
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus, attempts int, errorMsg string) error {
	set := bson.M{
		"status":       status,
		"attempts":     attempts,
		"errorMessage": errorMsg,
	}
	if status == EmailSent {
		set["sentAt"] = time.Now().UTC()
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}
