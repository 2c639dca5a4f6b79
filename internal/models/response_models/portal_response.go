package response_models

import "stepwise/internal/content"

type PortalWalkthrough struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	IconURL     string         `json:"icon_url"`
	Navigation  map[string]any `json:"navigation,omitempty"`
	Tags        []string       `json:"tags"`
	Steps       content.Steps  `json:"steps,omitempty"`
	Locked      bool           `json:"locked"`
}

type UnlockResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type WalkthroughStats struct {
	WalkthroughID  string  `json:"walkthrough_id"`
	Title          string  `json:"title,omitempty"`
	Views          int64   `json:"views"`
	StepViews      int64   `json:"step_views"`
	Completions    int64   `json:"completions"`
	CompletionRate float64 `json:"completion_rate"`
}

type AnalyticsSummary struct {
	Since        int64              `json:"since"`
	TotalViews   int64              `json:"total_views"`
	Walkthroughs []WalkthroughStats `json:"walkthroughs"`
}

type FeedbackResponse struct {
	ID        string `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt int64  `json:"created_at"`
}

type FeedbackPage struct {
	Items    []FeedbackResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
