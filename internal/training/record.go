package training

import "time"

// Type classifies how a training was delivered.
type Type string

const (
	TypeRemote   Type = "remote"
	TypeInPerson Type = "in-person"
	TypeOnSite   Type = "on-site"

	// TypeAll is only valid as a filter value, never on a record.
	TypeAll Type = "all"
)

// KnownType reports whether t is a value a record may carry.
func KnownType(t Type) bool {
	return t == TypeRemote || t == TypeInPerson || t == TypeOnSite
}

// Status tracks where a record sits in the approval flow.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusPending    Status = "pending-approval"
	StatusRejected   Status = "rejected"
	StatusInProgress Status = "in-progress"
)

// Certificate references an uploaded completion certificate. The reference
// is transient: it points into the in-process upload store and does not
// survive a restart.
type Certificate struct {
	RefID    string `json:"ref_id"`
	FileName string `json:"file_name"`
}

// Record is one professional-development activity for one user.
// Dates are calendar dates in ISO form (2006-01-02); Fee is set iff IsPaid.
type Record struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"training_name"`
	Institution string       `json:"institution_name"`
	Category    string       `json:"category,omitempty"`
	Type        Type         `json:"training_type"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Hours       float64      `json:"hours"`
	IsPaid      bool         `json:"is_paid"`
	Fee         *float64     `json:"fee,omitempty"`
	Certificate *Certificate `json:"certificate,omitempty"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// FormInput is the candidate data for a record before it is committed.
type FormInput struct {
	Name        string       `json:"training_name"`
	Institution string       `json:"institution_name"`
	Category    string       `json:"category"`
	Type        Type         `json:"training_type"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Hours       float64      `json:"hours"`
	IsPaid      bool         `json:"is_paid"`
	Fee         *float64     `json:"fee"`
	Certificate *Certificate `json:"certificate"`
	Status      Status       `json:"status"`
}

const dateLayout = "2006-01-02"

// statusFor assigns a status from the record's dates. The original prototype
// hardcoded "completed" even for future-dated records; here the dates decide
// unless the caller passes an explicit status.
func statusFor(startDate, endDate string, now time.Time) Status {
	today := now.Format(dateLayout)
	if endDate < today {
		return StatusCompleted
	}
	if startDate > today {
		return StatusPending
	}
	return StatusInProgress
}
