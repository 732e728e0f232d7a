package subtickets

// FieldParents is the ticket field the validator reports field-scoped
// rejections against.
const FieldParents = "parents"

// Rejection is an expected, user-facing reason to refuse a ticket save
// or workflow transition. It is returned as data, never as an error.
// An empty Field means the rejection applies to the whole ticket, not
// a single field; callers must treat those as blocking the operation.
type Rejection struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (r Rejection) String() string {
	if r.Field == "" {
		return r.Message
	}
	return r.Field + ": " + r.Message
}
