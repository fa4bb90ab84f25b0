package socrata

import "fmt"

// StatusError reports a non-200 answer from the open-data API.
// Authentication and credential problems surface this way as well.
type StatusError struct {
	Dataset    string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("socrata: dataset %s returned %s", e.Dataset, e.Status)
	}
	return fmt.Sprintf("socrata: dataset %s returned status %d", e.Dataset, e.StatusCode)
}
