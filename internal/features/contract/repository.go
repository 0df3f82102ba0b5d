package contract

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

type ContractRepository interface {
	UpsertTemplate(ctx context.Context, tpl *ContractTemplate) (*ContractTemplate, error)
	GetTemplate(ctx context.Context, id string) (*ContractTemplate, error)
	ListTemplates(ctx context.Context) ([]ContractTemplate, error)

	// SaveGenerated keeps one contract per employee and template; a repeat generation bumps the version.
	SaveGenerated(ctx context.Context, c *Contract) (*Contract, error)
	GetContract(ctx context.Context, id string) (*Contract, error)
	ListContracts(ctx context.Context, employeeID string) ([]Contract, error)

	LogGeneration(ctx context.Context, entry *GenerationLog) error
}

type ContractRepositoryImpl struct {
	Templates *mongo.Collection
	Contracts *mongo.Collection
	Logs      *mongo.Collection
}

func NewContractRepository(db *database.MongodbDB) ContractRepository {
	return &ContractRepositoryImpl{
		Templates: db.DB.Collection("contract_templates"),
		Contracts: db.DB.Collection("contracts"),
		Logs:      db.DB.Collection("contract_generation_logs"),
	}
}

// Contracts share the collection the workforce reader joins costs through,
// so employee_id is an ObjectID whenever the key is one. Keys from a SQL
// roster are kept as strings.
func employeeRef(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func refString(v interface{}) string {
	switch ref := v.(type) {
	case primitive.ObjectID:
		return ref.Hex()
	case string:
		return ref
	}
	return ""
}

type contractDoc struct {
	Contract   `bson:",inline"`
	EmployeeID interface{} `bson:"employee_id"`
}

func (d contractDoc) toContract() Contract {
	c := d.Contract
	c.EmployeeID = refString(d.EmployeeID)
	return c
}

func (r *ContractRepositoryImpl) UpsertTemplate(ctx context.Context, tpl *ContractTemplate) (*ContractTemplate, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"type":         tpl.Type,
			"content":      tpl.Content,
			"merge_fields": tpl.MergeFields,
			"ai_prompt":    tpl.AIPrompt,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_by": tpl.CreatedBy,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved ContractTemplate
	if err := r.Templates.FindOneAndUpdate(ctx, bson.M{"name": tpl.Name}, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ContractRepositoryImpl) GetTemplate(ctx context.Context, id string) (*ContractTemplate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common_models.ErrNotFound
	}
	var tpl ContractTemplate
	if err := r.Templates.FindOne(ctx, bson.M{"_id": oid}).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *ContractRepositoryImpl) ListTemplates(ctx context.Context) ([]ContractTemplate, error) {
	cursor, err := r.Templates.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []ContractTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *ContractRepositoryImpl) SaveGenerated(ctx context.Context, c *Contract) (*Contract, error) {
	now := time.Now().UTC()
	filter := bson.M{"employee_id": employeeRef(c.EmployeeID), "template_id": c.TemplateID}
	update := bson.M{
		"$set": bson.M{
			"status":            c.Status,
			"type":              c.Type,
			"start_date":        c.StartDate,
			"end_date":          c.EndDate,
			"generated_content": c.GeneratedContent,
			"updated_at":        now,
		},
		"$inc": bson.M{"version": 1},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc contractDoc
	if err := r.Contracts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	saved := doc.toContract()
	return &saved, nil
}

func (r *ContractRepositoryImpl) GetContract(ctx context.Context, id string) (*Contract, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common_models.ErrNotFound
	}
	var doc contractDoc
	if err := r.Contracts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	c := doc.toContract()
	return &c, nil
}

func (r *ContractRepositoryImpl) ListContracts(ctx context.Context, employeeID string) ([]Contract, error) {
	filter := bson.M{}
	if employeeID != "" {
		filter["employee_id"] = employeeRef(employeeID)
	}
	cursor, err := r.Contracts.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []contractDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	contracts := make([]Contract, 0, len(docs))
	for _, d := range docs {
		contracts = append(contracts, d.toContract())
	}
	return contracts, nil
}

func (r *ContractRepositoryImpl) LogGeneration(ctx context.Context, entry *GenerationLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.Logs.InsertOne(ctx, entry)
	return err
}
