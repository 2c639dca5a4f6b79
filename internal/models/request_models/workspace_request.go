package request_models

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
	Slug string `json:"slug" binding:"omitempty,max=80"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin editor viewer"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=80"`
	Description string `json:"description" binding:"max=500"`
	Position    int    `json:"position"`
}
