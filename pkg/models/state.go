package models

// AppState is the atomic unit of undo/redo history: one immutable snapshot
// of every collection. Mutations construct a brand-new AppState and never
// modify an existing one in place.
type AppState struct {
	Tasks  []Task  `json:"tasks"`
	Events []Event `json:"events"`
	Tags   []Tag   `json:"tags"`
}
