package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
)

func (a *API) registerClauseRoutes(router forge.Router) error {
	g := router.Group("/v1/users", forge.WithGroupTags("clauses"))

	if err := g.POST("/:userId/scopes/:scopeId/clauses", a.addClause,
		forge.WithSummary("Add clause"),
		forge.WithDescription("Appends a clause to one scope of the user's session."),
		forge.WithOperationID("addClause"),
		forge.WithRequestSchema(AddClauseRequest{}),
		forge.WithCreatedResponse(ClauseResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/:userId/scopes/:scopeId/clauses/:clauseId", a.updateClause,
		forge.WithSummary("Update clause"),
		forge.WithDescription("Changes the operator and/or operand of a clause."),
		forge.WithOperationID("updateClause"),
		forge.WithRequestSchema(UpdateClauseRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated clause", ClauseResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/:userId/scopes/:scopeId/clauses/:clauseId", a.removeClause,
		forge.WithSummary("Remove clause"),
		forge.WithDescription("Removes a clause from a scope."),
		forge.WithOperationID("removeClause"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/:userId/scopes/:scopeId/clauses", a.clearScope,
		forge.WithSummary("Clear scope"),
		forge.WithDescription("Removes every user clause of one scope. Required filters stay."),
		forge.WithOperationID("clearScope"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/:userId/clauses", a.clearAll,
		forge.WithSummary("Clear all clauses"),
		forge.WithDescription("Removes every user clause of every scope."),
		forge.WithOperationID("clearAllClauses"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) addClause(ctx forge.Context, req *AddClauseRequest) (*ClauseResponse, error) {
	if req.Field == "" || req.Operator == "" {
		return nil, forge.BadRequest("field and operator are required")
	}
	operand, err := req.Operand.Decode()
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	draft := clause.Clause{
		Field:    clause.Field(req.Field),
		Operator: clause.Operator(req.Operator),
		Operand:  operand,
		TagKey:   req.TagKey,
	}
	if err := clause.Validate(draft); err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	sess, scopeID, err := a.sessionScope(ctx)
	if err != nil {
		return nil, err
	}
	cid, err := sess.AddClause(ctx.Context(), scopeID, draft.Field, draft.Operator, draft.Operand, draft.TagKey)
	if err != nil {
		return nil, mapError(err)
	}
	c, _ := sess.State().Clause(scopeID, cid)

	resp := clauseResponse(ctx, sess, scopeID, c)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) updateClause(ctx forge.Context, req *UpdateClauseRequest) (*ClauseResponse, error) {
	clauseID, err := id.ParseClauseID(ctx.Param("clauseId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid clause ID: %v", err))
	}

	var patch clause.Patch
	if req.Operator != "" {
		op := clause.Operator(req.Operator)
		patch.Operator = &op
	}
	if req.Operand != nil {
		operand, err := req.Operand.Decode()
		if err != nil {
			return nil, forge.BadRequest(err.Error())
		}
		patch.Operand = operand
	}
	if patch.Empty() {
		return nil, forge.BadRequest("operator or operand is required")
	}

	sess, scopeID, err := a.sessionScope(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := sess.State().Clause(scopeID, clauseID)
	if !ok {
		return nil, mapError(fmt.Errorf("%w: %s", facet.ErrClauseNotFound, clauseID))
	}
	if err := clause.Validate(patch.Apply(current)); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	if err := sess.UpdateClause(ctx.Context(), scopeID, clauseID, patch); err != nil {
		return nil, mapError(err)
	}
	c, _ := sess.State().Clause(scopeID, clauseID)

	resp := clauseResponse(ctx, sess, scopeID, c)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) removeClause(ctx forge.Context, _ *ClausePathRequest) (*struct{}, error) {
	clauseID, err := id.ParseClauseID(ctx.Param("clauseId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid clause ID: %v", err))
	}
	sess, scopeID, err := a.sessionScope(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.RemoveClause(ctx.Context(), scopeID, clauseID) {
		return nil, mapError(fmt.Errorf("%w: %s", facet.ErrClauseNotFound, clauseID))
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) clearScope(ctx forge.Context, _ *ScopePathRequest) (*struct{}, error) {
	sess, scopeID, err := a.sessionScope(ctx)
	if err != nil {
		return nil, err
	}
	sess.ClearScope(ctx.Context(), scopeID)
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) clearAll(ctx forge.Context, _ *UserPathRequest) (*struct{}, error) {
	sess, err := a.eng.Session(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}
	sess.ClearAll(ctx.Context())
	return nil, ctx.NoContent(http.StatusNoContent)
}

// sessionScope resolves the user's session and checks the scope path
// parameter names one of their scopes.
func (a *API) sessionScope(ctx forge.Context) (*facet.Session, string, error) {
	sess, err := a.eng.Session(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, "", mapError(err)
	}
	scopeID := ctx.Param("scopeId")
	if !sess.State().Has(scopeID) {
		return nil, "", mapError(fmt.Errorf("%w: %s", facet.ErrScopeNotFound, scopeID))
	}
	return sess, scopeID, nil
}

func clauseResponse(ctx forge.Context, sess *facet.Session, scopeID string, c clause.Clause) *ClauseResponse {
	var labels map[string]string
	if opts, err := sess.Options(ctx.Context(), scopeID, c.Field, c.TagKey); err == nil {
		labels = facet.Labels(opts)
	}
	return &ClauseResponse{ScopeID: scopeID, Clause: c, Display: clause.Describe(c, labels)}
}
