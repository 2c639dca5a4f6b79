package response_models

import (
	"stepwise/internal/content"
	"stepwise/internal/models/db_models"
	"stepwise/internal/versioning"
)

// WalkthroughResponse never carries the password hash; HasPassword tells editors whether one
// is set.
type WalkthroughResponse struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspace_id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	IconURL     string         `json:"icon_url"`
	Privacy     string         `json:"privacy"`
	HasPassword bool           `json:"has_password"`
	Status      string         `json:"status"`
	Archived    bool           `json:"archived"`
	Navigation  map[string]any `json:"navigation"`
	CategoryIDs []string       `json:"category_ids"`
	Tags        []string       `json:"tags"`
	Steps       content.Steps  `json:"steps"`
	Version     int            `json:"version"`
	UpdatedAt   int64          `json:"updated_at"`
}

func NewWalkthroughResponse(w *db_models.Walkthrough) WalkthroughResponse {
	nav := map[string]any(w.Navigation)
	if nav == nil {
		nav = map[string]any{}
	}
	return WalkthroughResponse{
		ID:          w.ID.String(),
		WorkspaceID: w.WorkspaceID.String(),
		Title:       w.Title,
		Slug:        w.Slug,
		Description: w.Description,
		IconURL:     w.IconURL,
		Privacy:     string(w.Privacy),
		HasPassword: w.PasswordHash != "",
		Status:      string(w.Status),
		Archived:    w.Archived,
		Navigation:  nav,
		CategoryIDs: nonNil(w.CategoryIDs),
		Tags:        nonNil(w.Tags),
		Steps:       w.StepList(),
		Version:     w.Version,
		UpdatedAt:   w.UpdatedAt,
	}
}

type WalkthroughSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	IconURL   string `json:"icon_url"`
	Privacy   string `json:"privacy"`
	Status    string `json:"status"`
	Archived  bool   `json:"archived"`
	StepCount int    `json:"step_count"`
	Version   int    `json:"version"`
}

func NewWalkthroughSummary(w *db_models.Walkthrough) WalkthroughSummary {
	return WalkthroughSummary{
		ID:        w.ID.String(),
		Title:     w.Title,
		Slug:      w.Slug,
		IconURL:   w.IconURL,
		Privacy:   string(w.Privacy),
		Status:    string(w.Status),
		Archived:  w.Archived,
		StepCount: len(w.StepList()),
		Version:   w.Version,
	}
}

type VersionSummary struct {
	Version      int    `json:"version"`
	Title        string `json:"title"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    int64  `json:"created_at"`
	HasImageURLs bool   `json:"has_image_urls"`
}

type VersionResponse struct {
	VersionSummary
	Body db_models.SnapshotBody `json:"body"`
}

func NewVersionSummary(s versioning.Snapshot) VersionSummary {
	return VersionSummary{
		Version:      s.Version(),
		Title:        s.Body().Title,
		CreatedBy:    s.CreatedBy().String(),
		CreatedAt:    s.CreatedAt().Unix(),
		HasImageURLs: s.HasImageURLs(),
	}
}

func NewVersionResponse(s versioning.Snapshot) VersionResponse {
	return VersionResponse{VersionSummary: NewVersionSummary(s), Body: s.Body()}
}

type RecoveryResponse struct {
	versioning.Report
	Walkthrough WalkthroughResponse `json:"walkthrough"`
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
