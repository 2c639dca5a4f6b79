package request_models

import "stepwise/internal/content"

type CreateWalkthroughRequest struct {
	Title       string              `json:"title" binding:"required,min=1,max=200"`
	Slug        string              `json:"slug" binding:"omitempty,max=120"`
	Description string              `json:"description"`
	IconURL     string              `json:"icon_url" binding:"omitempty,url"`
	Privacy     string              `json:"privacy" binding:"omitempty,oneof=public private password"`
	Password    string              `json:"password" binding:"omitempty,min=4"`
	CategoryIDs []string            `json:"category_ids"`
	Tags        []string            `json:"tags"`
	Navigation  map[string]any      `json:"navigation"`
	Steps       []content.StepDraft `json:"steps"`
}

// UpdateWalkthroughRequest has PUT semantics for the fields it carries; nil fields keep the
// stored value. Steps, when present, replace the step list with block data merged by id.
type UpdateWalkthroughRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string              `json:"description"`
	IconURL     *string              `json:"icon_url"`
	Privacy     *string              `json:"privacy" binding:"omitempty,oneof=public private password"`
	Password    *string              `json:"password" binding:"omitempty,min=4"`
	Status      *string              `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	CategoryIDs *[]string            `json:"category_ids"`
	Tags        *[]string            `json:"tags"`
	Navigation  map[string]any       `json:"navigation"`
	Steps       *[]content.StepDraft `json:"steps"`
}

type StepRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Blocks      []any  `json:"blocks"`
	// Position inserts the step at the given index; nil appends.
	Position *int `json:"position"`
}

type UpdateStepRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Blocks      *[]any  `json:"blocks"`
}

type ReorderStepsRequest struct {
	StepIDs []string `json:"step_ids" binding:"required"`
}

type RecoverBlocksRequest struct {
	Version *int `json:"version" binding:"omitempty,min=1"`
}
