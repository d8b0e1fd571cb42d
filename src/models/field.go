package models

// FieldSnapshot maps a field id to its current value as seen on the
// per-entry read endpoint. Values are whatever the CRM returned under
// value.data, typically float64 or nil.
type FieldSnapshot map[string]interface{}

type FieldValueDTO struct {
	ID    string        `json:"id"`
	Value FieldValueBox `json:"value"`
}

type FieldValueBox struct {
	Type string      `json:"type,omitempty"`
	Data interface{} `json:"data"`
}

type FieldListDTO struct {
	Fields []FieldValueDTO `json:"fields"`
}

// WriteFieldRequest is the write payload for a single numeric field.
type WriteFieldRequest struct {
	Value FieldValueBox `json:"value"`
}

func NewNumberWrite(data int) WriteFieldRequest {
	return WriteFieldRequest{
		Value: FieldValueBox{
			Type: "number",
			Data: data,
		},
	}
}

// WriteResult is the structured outcome of a field write. A non-2xx status
// is carried here rather than raised as an error, so the caller can shape a
// diagnostic response without crashing the request.
type WriteResult struct {
	OK     bool
	Status int
	Data   string
}
