package domain

// ProgressUpdate is a named sub-step report attached to a status query.
// Name is a step identifier (possibly numeric-as-string, including the "-1"
// sentinel the service uses for plan-level rows). Description is an opaque
// payload, typically a JSON table description, and is never parsed here.
type ProgressUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// BuildTableMapping maps each progress update's name to its description.
// Descriptions are passed through opaquely. When two updates share a name,
// the later one in the sequence wins.
func BuildTableMapping(updates []ProgressUpdate) map[string]string {
	mapping := make(map[string]string, len(updates))
	for _, u := range updates {
		mapping[u.Name] = u.Description
	}
	return mapping
}
