package workforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindPlaceholders(t *testing.T) {
	tests := []struct {
		dialect string
		want    string
	}{
		{"postgres", "WHERE a = $1 AND b = $2"},
		{"mysql", "WHERE a = ? AND b = ?"},
	}
	for _, tt := range tests {
		r := NewSQLRepository(nil, tt.dialect)
		assert.Equal(t, tt.want, r.bind("WHERE a = ? AND b = ?"))
	}
}

func TestEmployeeName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", EmployeeRecord{FirstName: "Ada", LastName: "Lovelace"}.Name())
	assert.Equal(t, "Ada", EmployeeRecord{FirstName: "Ada"}.Name())
}
