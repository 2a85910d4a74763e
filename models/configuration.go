package models

// ConfigurationStep is one item of a league's setup checklist.
type ConfigurationStep struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Required    bool   `json:"required"`
	Order       int    `json:"order"`
}

type ConfigurationStatus struct {
	LeagueID             int                 `json:"league_id"`
	FormatType           *CompetitionType    `json:"format_type,omitempty"`
	Steps                []ConfigurationStep `json:"steps"`
	CompletionPercentage int                 `json:"completion_percentage"`
	IsConfigured         bool                `json:"is_configured"`
}
