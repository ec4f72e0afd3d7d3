package models

// ref renders a reference field the way a document store does: the bare id
// when the reference was not populated, the selected sub-document otherwise.
func ref[T any](id string, populated *T) any {
	if populated != nil {
		return populated
	}
	if id == "" {
		return nil
	}
	return id
}
