package report

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

type ReportRepository interface {
	UpsertTemplate(ctx context.Context, tpl *ReportTemplate) (*ReportTemplate, error)
	GetTemplate(ctx context.Context, id string) (*ReportTemplate, error)
	ListTemplates(ctx context.Context) ([]ReportTemplate, error)

	CreateRun(ctx context.Context, run *ReportRun) error
	GetRun(ctx context.Context, id string) (*ReportRun, error)
	SetInsights(ctx context.Context, id string, insights *Insights) error
	ListRuns(ctx context.Context, templateID string, limit int64) ([]ReportRun, error)
}

type ReportRepositoryImpl struct {
	Templates *mongo.Collection
	Runs      *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Templates: db.DB.Collection("report_templates"),
		Runs:      db.DB.Collection("report_runs"),
	}
}

// UpsertTemplate keys templates by name: content is replaced, identity and creation time are kept.
func (r *ReportRepositoryImpl) UpsertTemplate(ctx context.Context, tpl *ReportTemplate) (*ReportTemplate, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"description":  tpl.Description,
			"input_schema": tpl.InputSchema,
			"query":        tpl.Query,
			"layout":       tpl.Layout,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_by": tpl.CreatedBy,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved ReportTemplate
	if err := r.Templates.FindOneAndUpdate(ctx, bson.M{"name": tpl.Name}, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ReportRepositoryImpl) GetTemplate(ctx context.Context, id string) (*ReportTemplate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common_models.ErrNotFound
	}
	var tpl ReportTemplate
	if err := r.Templates.FindOne(ctx, bson.M{"_id": oid}).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *ReportRepositoryImpl) ListTemplates(ctx context.Context) ([]ReportTemplate, error) {
	cursor, err := r.Templates.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []ReportTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *ReportRepositoryImpl) CreateRun(ctx context.Context, run *ReportRun) error {
	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	_, err := r.Runs.InsertOne(ctx, run)
	return err
}

func (r *ReportRepositoryImpl) GetRun(ctx context.Context, id string) (*ReportRun, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common_models.ErrNotFound
	}
	var run ReportRun
	if err := r.Runs.FindOne(ctx, bson.M{"_id": oid}).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// SetInsights touches only the derived insights; rows are never rewritten.
func (r *ReportRepositoryImpl) SetInsights(ctx context.Context, id string, insights *Insights) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common_models.ErrNotFound
	}
	res, err := r.Runs.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"insights": insights}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return common_models.ErrNotFound
	}
	return nil
}

func (r *ReportRepositoryImpl) ListRuns(ctx context.Context, templateID string, limit int64) ([]ReportRun, error) {
	filter := bson.M{}
	if templateID != "" {
		oid, err := primitive.ObjectIDFromHex(templateID)
		if err != nil {
			return []ReportRun{}, nil
		}
		filter["template_id"] = oid
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetProjection(bson.M{"rows": 0})

	cursor, err := r.Runs.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := []ReportRun{}
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
