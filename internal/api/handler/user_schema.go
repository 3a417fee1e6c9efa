package handler

import (
	"github.com/lingoleap/learning-api/internal/core/domain"
	"github.com/lingoleap/learning-api/internal/core/ports"
)

type userResponse struct {
	User domain.PublicUser `json:"user"`
}

type listUsersQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type listUsersResponse struct {
	Users []domain.PublicUser `json:"users"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func toListUsersResponse(r *ports.ListUsersResult) listUsersResponse {
	users := r.Users
	if users == nil {
		users = []domain.PublicUser{}
	}
	return listUsersResponse{Users: users, Total: r.Total, Page: r.Page, Limit: r.Limit}
}
