package training

import "time"

// Errors maps form field names to human-readable violation messages.
type Errors map[string]string

// Valid reports whether no rule was violated.
func (e Errors) Valid() bool { return len(e) == 0 }

// Certificate upload limits.
const MaxCertificateSize = 5 << 20 // 5 MiB

var acceptedCertificateTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Validate checks a candidate record's fields. All rules are evaluated
// independently so every violation is reported in one pass; it never
// panics and never touches the store.
func Validate(in FormInput) Errors {
	errs := Errors{}
	if in.Name == "" {
		errs["training_name"] = "training name is required"
	}
	if in.Institution == "" {
		errs["institution_name"] = "institution name is required"
	}
	if in.Type == "" {
		errs["training_type"] = "training type is required"
	} else if !KnownType(in.Type) {
		errs["training_type"] = "unknown training type"
	}
	start, startErr := parseDate(in.StartDate)
	if in.StartDate == "" {
		errs["start_date"] = "start date is required"
	} else if startErr != nil {
		errs["start_date"] = "start date must be a valid date"
	}
	end, endErr := parseDate(in.EndDate)
	if in.EndDate == "" {
		errs["end_date"] = "end date is required"
	} else if endErr != nil {
		errs["end_date"] = "end date must be a valid date"
	} else if startErr == nil && in.StartDate != "" && end.Before(start) {
		errs["end_date"] = "end date must be on or after the start date"
	}
	if in.Hours <= 0 {
		errs["hours"] = "hours must be greater than zero"
	}
	if in.IsPaid && (in.Fee == nil || *in.Fee <= 0) {
		errs["fee"] = "a paid training needs a positive fee"
	}
	return errs
}

// ValidateCertificateFile checks an upload candidate before it enters the
// transient certificate store. Each rule has its own message.
func ValidateCertificateFile(fileName string, size int64, contentType string) Errors {
	errs := Errors{}
	if fileName == "" {
		errs["certificate_file"] = "file name is required"
		return errs
	}
	if size > MaxCertificateSize {
		errs["certificate_size"] = "file size must be 5MB or less"
	}
	if !acceptedCertificateTypes[contentType] {
		errs["certificate_type"] = "only PDF, JPG or PNG files can be uploaded"
	}
	return errs
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
