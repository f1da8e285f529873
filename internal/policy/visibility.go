package policy

// Kind record family a scope is computed for
type Kind int

const (
	KindRequest Kind = iota
	KindCalendarEvent
	KindLeave
	KindDirectory
	KindDocument
	KindAnnouncement
)

// Scope the set of records an actor may read.
// A record is visible when All is set, or any enabled clause matches.
type Scope struct {
	All            bool
	OwnerID        int64 // records owned by this user
	DepartmentID   int64 // records whose owner belongs to this department
	IncludeGeneral bool  // organisation-wide records
}

// ScopeFor narrows kind for actor a.
//
//	requests, leave:  staff own; department head own department; director/admin all
//	calendar:         general OR owner; admin all
//	directory, documents, announcements: everyone sees everything
func ScopeFor(kind Kind, a Actor) Scope {
	switch kind {
	case KindRequest, KindLeave:
		if a.IsElevated() {
			return Scope{All: true}
		}
		s := Scope{OwnerID: a.UserID}
		if a.IsDepartmentHead() && a.DepartmentID > 0 {
			s.DepartmentID = a.DepartmentID
		}
		return s

	case KindCalendarEvent:
		if a.IsAdmin() {
			return Scope{All: true}
		}
		return Scope{OwnerID: a.UserID, IncludeGeneral: true}

	default:
		return Scope{All: true}
	}
}

// Allows reports whether a record with the given owner, owner's department and
// general flag falls inside s.
func (s Scope) Allows(ownerID, ownerDeptID int64, general bool) bool {
	switch {
	case s.All:
		return true
	case s.IncludeGeneral && general:
		return true
	case s.OwnerID > 0 && ownerID == s.OwnerID:
		return true
	case s.DepartmentID > 0 && ownerDeptID == s.DepartmentID:
		return true
	}
	return false
}

// Extractors reads the attributes a Scope inspects from a record.
// Department and General may be nil for kinds that lack them.
type Extractors[T any] struct {
	Owner      func(T) int64
	Department func(T) int64
	General    func(T) bool
}

// Visible filters records down to those kind's scope lets a see.
// The input slice is not modified.
func Visible[T any](kind Kind, a Actor, records []T, ex Extractors[T]) []T {
	s := ScopeFor(kind, a)
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var owner, dept int64
		var general bool
		if ex.Owner != nil {
			owner = ex.Owner(rec)
		}
		if ex.Department != nil {
			dept = ex.Department(rec)
		}
		if ex.General != nil {
			general = ex.General(rec)
		}
		if s.Allows(owner, dept, general) {
			out = append(out, rec)
		}
	}
	return out
}
