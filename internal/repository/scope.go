package repository

import (
	"strings"

	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/policy"
)

// applyScope restricts q to the rows s allows.
// ownerCol is the owning user's column; generalCol is "" for tables without a general flag.
// Department clauses match through the owner's current department.
func applyScope(q *gorm.DB, s policy.Scope, ownerCol, generalCol string) *gorm.DB {
	if s.All {
		return q
	}

	var conds []string
	var args []interface{}
	if s.IncludeGeneral && generalCol != "" {
		conds = append(conds, generalCol+" = TRUE")
	}
	if s.OwnerID > 0 {
		conds = append(conds, ownerCol+" = ?")
		args = append(args, s.OwnerID)
	}
	if s.DepartmentID > 0 {
		conds = append(conds, ownerCol+" IN (SELECT id FROM users WHERE department_id = ?)")
		args = append(args, s.DepartmentID)
	}

	if len(conds) == 0 {
		return q.Where("1 = 0")
	}
	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}
