package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/facet/scope"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("users"))

	if err := g.POST("/users", a.createUser,
		forge.WithSummary("Create user"),
		forge.WithDescription("Adds a user and their permission scopes to the directory."),
		forge.WithOperationID("createUser"),
		forge.WithRequestSchema(CreateUserRequest{}),
		forge.WithCreatedResponse(&scope.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId", a.getUser,
		forge.WithSummary("Get user"),
		forge.WithDescription("Returns a user and their scopes."),
		forge.WithOperationID("getUser"),
		forge.WithResponseSchema(http.StatusOK, "User details", &scope.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/users/:userId", a.updateUser,
		forge.WithSummary("Update user"),
		forge.WithDescription("Replaces a user's profile and scopes. A live session is reset."),
		forge.WithOperationID("updateUser"),
		forge.WithRequestSchema(UpdateUserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated user", &scope.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/users/:userId", a.deleteUser,
		forge.WithSummary("Delete user"),
		forge.WithDescription("Removes a user and discards their session."),
		forge.WithOperationID("deleteUser"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/users", a.listUsers,
		forge.WithSummary("List users"),
		forge.WithDescription("Lists users ordered by id."),
		forge.WithOperationID("listUsers"),
		forge.WithRequestSchema(ListUsersRequest{}),
		forge.WithResponseSchema(http.StatusOK, "User list", ListResponse[*scope.User]{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createUser(ctx forge.Context, req *CreateUserRequest) (*scope.User, error) {
	if req.ID == "" {
		return nil, forge.BadRequest("id is required")
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	u := &scope.User{
		ID:          req.ID,
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Description: req.Description,
		Scopes:      req.Scopes,
	}
	if err := a.eng.CreateUser(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusCreated, u)
}

func (a *API) getUser(ctx forge.Context, _ *UserPathRequest) (*scope.User, error) {
	u, err := a.eng.GetUser(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) updateUser(ctx forge.Context, req *UpdateUserRequest) (*scope.User, error) {
	u, err := a.eng.GetUser(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Description != nil {
		u.Description = *req.Description
	}
	if req.Scopes != nil {
		u.Scopes = req.Scopes
	}

	if err := a.eng.UpdateUser(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) deleteUser(ctx forge.Context, _ *UserPathRequest) (*struct{}, error) {
	if err := a.eng.DeleteUser(ctx.Context(), ctx.Param("userId")); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listUsers(ctx forge.Context, req *ListUsersRequest) (*ListResponse[*scope.User], error) {
	filter := &scope.ListFilter{
		Search: req.Search,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}
	users, err := a.eng.ListUsers(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &ListResponse[*scope.User]{Items: users, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}
