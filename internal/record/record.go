package record

// StatusPending is the status assigned to records created by modscout; a
// curator promotes them later.
const StatusPending = "pending"

// Record is a catalog entry as the external store reports it. The pipeline
// borrows these read-only; it never mutates a Record in place.
type Record struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}
