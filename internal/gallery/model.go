package gallery

import "time"

// Record describes one generated poster.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	Prompt      string    `json:"prompt,omitempty"`
	FilePath    string    `json:"file_path"`
	PublicURL   string    `json:"public_url"`
	CreatedAt   time.Time `json:"created_at"`
}
