package request_models

type UnlockRequest struct {
	Password string `json:"password"`
}

type AnalyticsEventRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=view step_view complete"`
	StepIndex *int   `json:"step_index" binding:"omitempty,min=0"`
	SessionID string `json:"session_id" binding:"max=64"`
}

type AddFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}
