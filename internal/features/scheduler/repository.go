package scheduler

import (
	"context"
	"errors"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *ScheduledReport) error
	GetByID(ctx context.Context, id string) (*ScheduledReport, error)
	List(ctx context.Context, filter map[string]interface{}) ([]ScheduledReport, error)
	Update(ctx context.Context, schedule *ScheduledReport) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]ScheduledReport, error)
	UpdateLastRunAt(ctx context.Context, id string, lastRun time.Time) error

	CreateExecution(ctx context.Context, execution *ScheduleExecution) error
	UpdateExecution(ctx context.Context, execution *ScheduleExecution) error
	ListExecutions(ctx context.Context, scheduleID string, limit int) ([]ScheduleExecution, error)
}

type ScheduleRepositoryImpl struct {
	collection          *mongo.Collection
	executionCollection *mongo.Collection
}

func NewScheduleRepository(db *database.MongodbDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		collection:          db.DB.Collection("scheduled_reports"),
		executionCollection: db.DB.Collection("schedule_executions"),
	}
}

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, schedule *ScheduledReport) error {
	now := time.Now().UTC()
	schedule.ID = primitive.NewObjectID()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, schedule)
	return err
}

func (r *ScheduleRepositoryImpl) GetByID(ctx context.Context, id string) (*ScheduledReport, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common_models.ErrNotFound
	}

	var schedule ScheduledReport
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepositoryImpl) List(ctx context.Context, filter map[string]interface{}) ([]ScheduledReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	schedules := []ScheduledReport{}
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// Update replaces the editable fields. The last run timestamp is owned by the executor.
func (r *ScheduleRepositoryImpl) Update(ctx context.Context, schedule *ScheduledReport) error {
	schedule.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"template_id":   schedule.TemplateID,
		"schedule_cron": schedule.ScheduleCron,
		"recipients":    schedule.Recipients,
		"filters":       schedule.Filters,
		"format":        schedule.Format,
		"active":        schedule.Active,
		"updated_at":    schedule.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": schedule.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return common_models.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common_models.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common_models.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepositoryImpl) ListActive(ctx context.Context) ([]ScheduledReport, error) {
	return r.List(ctx, bson.M{"active": true})
}

func (r *ScheduleRepositoryImpl) UpdateLastRunAt(ctx context.Context, id string, lastRun time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common_models.ErrNotFound
	}
	update := bson.M{"$set": bson.M{"last_run_at": lastRun}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return common_models.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepositoryImpl) CreateExecution(ctx context.Context, execution *ScheduleExecution) error {
	execution.ID = primitive.NewObjectID()
	_, err := r.executionCollection.InsertOne(ctx, execution)
	return err
}

func (r *ScheduleRepositoryImpl) UpdateExecution(ctx context.Context, execution *ScheduleExecution) error {
	_, err := r.executionCollection.UpdateOne(ctx, bson.M{"_id": execution.ID}, bson.M{"$set": execution})
	return err
}

func (r *ScheduleRepositoryImpl) ListExecutions(ctx context.Context, scheduleID string, limit int) ([]ScheduleExecution, error) {
	objectID, err := primitive.ObjectIDFromHex(scheduleID)
	if err != nil {
		return nil, common_models.ErrNotFound
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.executionCollection.Find(ctx, bson.M{"schedule_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	executions := []ScheduleExecution{}
	if err := cursor.All(ctx, &executions); err != nil {
		return nil, err
	}
	return executions, nil
}
