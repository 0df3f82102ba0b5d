package workforce

import (
	"strings"
	"time"
)

type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "ACTIVE"
	EmployeeOnboarding EmployeeStatus = "ONBOARDING"
	EmployeeOnLeave    EmployeeStatus = "ON_LEAVE"
	EmployeeTerminated EmployeeStatus = "TERMINATED"
)

type CostType string

const (
	CostBaseSalary CostType = "BASE_SALARY"
	CostAllowance  CostType = "ALLOWANCE"
	CostBonus      CostType = "BONUS"
	CostInsurance  CostType = "INSURANCE"
	CostOther      CostType = "OTHER"
)

// EmployeeRecord is an employee joined with its department and position.
type EmployeeRecord struct {
	ID             string         `json:"id"`
	EmployeeCode   string         `json:"employeeCode"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Status         EmployeeStatus `json:"status"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        *time.Time     `json:"endDate,omitempty"`
	DepartmentID   string         `json:"departmentId,omitempty"`
	DepartmentName string         `json:"department,omitempty"`
	DepartmentCode string         `json:"departmentCode,omitempty"`
	PositionTitle  string         `json:"position,omitempty"`
}

func (e EmployeeRecord) Name() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// CostRecord is a contract cost joined through its contract to the owning employee and department.
type CostRecord struct {
	ID             string    `json:"id"`
	ContractID     string    `json:"contractId"`
	EmployeeID     string    `json:"employeeId"`
	EmployeeName   string    `json:"employee"`
	DepartmentName string    `json:"department,omitempty"`
	DepartmentCode string    `json:"departmentCode,omitempty"`
	CostType       CostType  `json:"costType"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	EffectiveDate  time.Time `json:"effectiveDate"`
	Note           string    `json:"note,omitempty"`
}
