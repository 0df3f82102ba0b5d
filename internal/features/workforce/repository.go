package workforce

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Reader is the read-only view of the HR data the report engine and contract
// generation need. Employee/department CRUD lives elsewhere.
type Reader interface {
	ListEmployees(ctx context.Context) ([]EmployeeRecord, error)
	GetEmployee(ctx context.Context, id string) (*EmployeeRecord, error)
	ListCosts(ctx context.Context) ([]CostRecord, error)
	ListCostsForEmployee(ctx context.Context, employeeID string) ([]CostRecord, error)
}

// NewReader picks the SQL reader when an external workforce database is configured.
func NewReader(mongodb *database.MongodbDB, sqlDB *database.WorkforceSQL) Reader {
	if sqlDB != nil && sqlDB.DB != nil {
		return NewSQLRepository(sqlDB.DB, sqlDB.Dialect)
	}
	return NewMongoRepository(mongodb)
}

type departmentDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Code string             `bson:"code"`
}

type positionDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Title string             `bson:"title"`
}

type employeeDoc struct {
	ID           primitive.ObjectID  `bson:"_id"`
	EmployeeCode string              `bson:"employee_code"`
	FirstName    string              `bson:"first_name"`
	LastName     string              `bson:"last_name"`
	Email        string              `bson:"email"`
	Status       EmployeeStatus      `bson:"status"`
	StartDate    time.Time           `bson:"start_date"`
	EndDate      *time.Time          `bson:"end_date,omitempty"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty"`
	PositionID   *primitive.ObjectID `bson:"position_id,omitempty"`
}

type contractRefDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	EmployeeID primitive.ObjectID `bson:"employee_id"`
}

type costDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	ContractID    primitive.ObjectID `bson:"contract_id"`
	CostType      CostType           `bson:"cost_type"`
	Amount        float64            `bson:"amount"`
	Currency      string             `bson:"currency"`
	EffectiveDate time.Time          `bson:"effective_date"`
	Note          string             `bson:"note,omitempty"`
}

type MongoRepository struct {
	employees   *mongo.Collection
	departments *mongo.Collection
	positions   *mongo.Collection
	contracts   *mongo.Collection
	costs       *mongo.Collection
}

func NewMongoRepository(db *database.MongodbDB) *MongoRepository {
	return &MongoRepository{
		employees:   db.DB.Collection("employees"),
		departments: db.DB.Collection("departments"),
		positions:   db.DB.Collection("positions"),
		contracts:   db.DB.Collection("contracts"),
		costs:       db.DB.Collection("contract_costs"),
	}
}

func (r *MongoRepository) ListEmployees(ctx context.Context) ([]EmployeeRecord, error) {
	var docs []employeeDoc
	opts := options.Find().SetSort(bson.D{{Key: "employee_code", Value: 1}})
	if err := findAll(ctx, r.employees, bson.M{}, &docs, opts); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return r.joinEmployees(ctx, docs)
}

func (r *MongoRepository) GetEmployee(ctx context.Context, id string) (*EmployeeRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common_models.ErrNotFound
	}
	var doc employeeDoc
	if err := r.employees.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	records, err := r.joinEmployees(ctx, []employeeDoc{doc})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (r *MongoRepository) ListCosts(ctx context.Context) ([]CostRecord, error) {
	return r.listCosts(ctx, bson.M{})
}

func (r *MongoRepository) ListCostsForEmployee(ctx context.Context, employeeID string) ([]CostRecord, error) {
	oid, err := primitive.ObjectIDFromHex(employeeID)
	if err != nil {
		return nil, common_models.ErrNotFound
	}
	var contracts []contractRefDoc
	if err := findAll(ctx, r.contracts, bson.M{"employee_id": oid}, &contracts); err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return []CostRecord{}, nil
	}
	return r.listCosts(ctx, bson.M{"contract_id": bson.M{"$in": ids}})
}

func (r *MongoRepository) listCosts(ctx context.Context, filter bson.M) ([]CostRecord, error) {
	var docs []costDoc
	opts := options.Find().SetSort(bson.D{{Key: "effective_date", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.costs, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("failed to list contract costs: %w", err)
	}

	var contracts []contractRefDoc
	if err := findAll(ctx, r.contracts, bson.M{}, &contracts); err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	contractOwner := make(map[primitive.ObjectID]primitive.ObjectID, len(contracts))
	for _, c := range contracts {
		contractOwner[c.ID] = c.EmployeeID
	}

	employees, err := r.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]EmployeeRecord, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	records := make([]CostRecord, 0, len(docs))
	for _, d := range docs {
		rec := CostRecord{
			ID:            d.ID.Hex(),
			ContractID:    d.ContractID.Hex(),
			CostType:      d.CostType,
			Amount:        d.Amount,
			Currency:      d.Currency,
			EffectiveDate: d.EffectiveDate,
			Note:          d.Note,
		}
		if owner, ok := contractOwner[d.ContractID]; ok {
			emp := byID[owner.Hex()]
			rec.EmployeeID = owner.Hex()
			rec.EmployeeName = emp.Name()
			rec.DepartmentName = emp.DepartmentName
			rec.DepartmentCode = emp.DepartmentCode
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *MongoRepository) joinEmployees(ctx context.Context, docs []employeeDoc) ([]EmployeeRecord, error) {
	var departments []departmentDoc
	if err := findAll(ctx, r.departments, bson.M{}, &departments); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	var positions []positionDoc
	if err := findAll(ctx, r.positions, bson.M{}, &positions); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	deptByID := make(map[primitive.ObjectID]departmentDoc, len(departments))
	for _, d := range departments {
		deptByID[d.ID] = d
	}
	posByID := make(map[primitive.ObjectID]string, len(positions))
	for _, p := range positions {
		posByID[p.ID] = p.Title
	}

	records := make([]EmployeeRecord, 0, len(docs))
	for _, d := range docs {
		rec := EmployeeRecord{
			ID:           d.ID.Hex(),
			EmployeeCode: d.EmployeeCode,
			FirstName:    d.FirstName,
			LastName:     d.LastName,
			Email:        d.Email,
			Status:       d.Status,
			StartDate:    d.StartDate,
			EndDate:      d.EndDate,
		}
		if d.DepartmentID != nil {
			dept := deptByID[*d.DepartmentID]
			rec.DepartmentID = d.DepartmentID.Hex()
			rec.DepartmentName = dept.Name
			rec.DepartmentCode = dept.Code
		}
		if d.PositionID != nil {
			rec.PositionTitle = posByID[*d.PositionID]
		}
		records = append(records, rec)
	}
	return records, nil
}

func findAll(ctx context.Context, col *mongo.Collection, filter bson.M, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
