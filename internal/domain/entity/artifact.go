package entity

// ConfigFile is a generated infrastructure file.
type ConfigFile struct {
	RunID    string                   `json:"run_id"`
	Name     string                   `json:"name"`
	Content  string                   `json:"content"`
	Type     string                   `json:"type"` // terraform
	Warnings []*ValidationConfigError `json:"warnings,omitempty"`
}

type ValidationConfigError struct {
	File    string `json:"file"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}
