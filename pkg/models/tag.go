package models

// Tag is referenced by weak id from Task.TagIDs and Event.TagIDs. Deleting
// a tag must strip its id from every referencing collection.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"` // hex string, e.g. #3b82f6
}
