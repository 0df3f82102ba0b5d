package workforce

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
)

const employeeSelect = `
SELECT e.id, e.employee_code, e.first_name, e.last_name, e.email, e.status,
       e.start_date, e.end_date, COALESCE(e.department_id, ''),
       COALESCE(d.name, ''), COALESCE(d.code, ''), COALESCE(p.title, '')
FROM employees e
LEFT JOIN departments d ON d.id = e.department_id
LEFT JOIN positions p ON p.id = e.position_id`

const costSelect = `
SELECT cc.id, cc.contract_id, e.id, e.first_name, e.last_name,
       COALESCE(d.name, ''), COALESCE(d.code, ''), cc.cost_type, cc.amount,
       cc.currency, cc.effective_date, COALESCE(cc.note, '')
FROM contract_costs cc
JOIN contracts c ON c.id = cc.contract_id
JOIN employees e ON e.id = c.employee_id
LEFT JOIN departments d ON d.id = e.department_id`

// SQLRepository reads the workforce tables of an external postgres or mysql HR database.
type SQLRepository struct {
	db      *sql.DB
	dialect string
}

func NewSQLRepository(db *sql.DB, dialect string) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// bind rewrites "?" placeholders for postgres.
func (r *SQLRepository) bind(query string) string {
	if r.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *SQLRepository) ListEmployees(ctx context.Context) ([]EmployeeRecord, error) {
	rows, err := r.db.QueryContext(ctx, employeeSelect+" ORDER BY e.employee_code")
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	records := []EmployeeRecord{}
	for rows.Next() {
		rec, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLRepository) GetEmployee(ctx context.Context, id string) (*EmployeeRecord, error) {
	row := r.db.QueryRowContext(ctx, r.bind(employeeSelect+" WHERE e.id = ?"), id)
	rec, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQLRepository) ListCosts(ctx context.Context) ([]CostRecord, error) {
	return r.queryCosts(ctx, costSelect+" ORDER BY cc.effective_date, cc.id")
}

func (r *SQLRepository) ListCostsForEmployee(ctx context.Context, employeeID string) ([]CostRecord, error) {
	return r.queryCosts(ctx, r.bind(costSelect+" WHERE e.id = ? ORDER BY cc.effective_date, cc.id"), employeeID)
}

func (r *SQLRepository) queryCosts(ctx context.Context, query string, args ...interface{}) ([]CostRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract costs: %w", err)
	}
	defer rows.Close()

	records := []CostRecord{}
	for rows.Next() {
		var rec CostRecord
		var first, last string
		if err := rows.Scan(&rec.ID, &rec.ContractID, &rec.EmployeeID, &first, &last,
			&rec.DepartmentName, &rec.DepartmentCode, &rec.CostType, &rec.Amount,
			&rec.Currency, &rec.EffectiveDate, &rec.Note); err != nil {
			return nil, err
		}
		rec.EmployeeName = strings.TrimSpace(first + " " + last)
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (EmployeeRecord, error) {
	var rec EmployeeRecord
	var end sql.NullTime
	err := row.Scan(&rec.ID, &rec.EmployeeCode, &rec.FirstName, &rec.LastName, &rec.Email,
		&rec.Status, &rec.StartDate, &end, &rec.DepartmentID,
		&rec.DepartmentName, &rec.DepartmentCode, &rec.PositionTitle)
	if err != nil {
		return rec, err
	}
	if end.Valid {
		t := end.Time
		rec.EndDate = &t
	}
	return rec, nil
}

