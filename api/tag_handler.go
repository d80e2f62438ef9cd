package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/facet/tag"
)

func (a *API) registerTagRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("tags"))

	if err := g.GET("/tags", a.listTags,
		forge.WithSummary("List tags"),
		forge.WithDescription("Lists default and custom tags, defaults first."),
		forge.WithOperationID("listTags"),
		forge.WithResponseSchema(http.StatusOK, "Tag list", []*tag.Tag{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/tags", a.createTag,
		forge.WithSummary("Create tag"),
		forge.WithDescription("Creates a custom tag. The key is normalised."),
		forge.WithOperationID("createTag"),
		forge.WithRequestSchema(CreateTagRequest{}),
		forge.WithCreatedResponse(&tag.Tag{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/tags/:key", a.updateTag,
		forge.WithSummary("Update tag"),
		forge.WithDescription("Changes a custom tag's label or values. Default tags are read-only."),
		forge.WithOperationID("updateTag"),
		forge.WithRequestSchema(UpdateTagRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated tag", &tag.Tag{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/tags/:key", a.deleteTag,
		forge.WithSummary("Delete tag"),
		forge.WithDescription("Deletes a custom tag. Default tags are read-only."),
		forge.WithOperationID("deleteTag"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) listTags(ctx forge.Context, _ *struct{}) ([]*tag.Tag, error) {
	tags, err := a.eng.ListTags(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	return tags, ctx.JSON(http.StatusOK, tags)
}

func (a *API) createTag(ctx forge.Context, req *CreateTagRequest) (*tag.Tag, error) {
	if req.Key == "" {
		return nil, forge.BadRequest("key is required")
	}
	t, err := a.eng.CreateTag(ctx.Context(), req.Key, req.Label, req.Values)
	if err != nil {
		return nil, mapError(err)
	}
	return t, ctx.JSON(http.StatusCreated, t)
}

func (a *API) updateTag(ctx forge.Context, req *UpdateTagRequest) (*tag.Tag, error) {
	t, err := a.eng.UpdateTag(ctx.Context(), ctx.Param("key"), req.Label, req.Values)
	if err != nil {
		return nil, mapError(err)
	}
	return t, ctx.JSON(http.StatusOK, t)
}

func (a *API) deleteTag(ctx forge.Context, _ *TagPathRequest) (*struct{}, error) {
	if err := a.eng.DeleteTag(ctx.Context(), ctx.Param("key")); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}
