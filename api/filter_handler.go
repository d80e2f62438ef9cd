package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
)

func (a *API) registerFilterRoutes(router forge.Router) error {
	g := router.Group("/v1/users", forge.WithGroupTags("filters"))

	if err := g.POST("/:userId/apply", a.apply,
		forge.WithSummary("Apply filters"),
		forge.WithDescription("Evaluates every scope of the user with the given clauses and returns the merged records. The user's session is left untouched."),
		forge.WithOperationID("applyFilters"),
		forge.WithRequestSchema(ApplyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Merged records", &facet.ApplyResult{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:userId/records", a.records,
		forge.WithSummary("Session records"),
		forge.WithDescription("Returns the records matching the user's current session clauses."),
		forge.WithOperationID("sessionRecords"),
		forge.WithResponseSchema(http.StatusOK, "Merged records", RecordsResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:userId/scopes/:scopeId/options", a.options,
		forge.WithSummary("Field options"),
		forge.WithDescription("Lists the values of a field within a scope, each marked allowed or not."),
		forge.WithOperationID("fieldOptions"),
		forge.WithRequestSchema(OptionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Options", OptionsResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/:userId/scopes/:scopeId/fields", a.addableFields,
		forge.WithSummary("Addable fields"),
		forge.WithDescription("Lists the fields and custom tag keys a new clause may use in the scope."),
		forge.WithOperationID("addableFields"),
		forge.WithResponseSchema(http.StatusOK, "Fields", FieldsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) apply(ctx forge.Context, req *ApplyRequest) (*facet.ApplyResult, error) {
	u, err := a.eng.GetUser(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}

	clauses := make(map[string][]clause.Clause, len(req.Clauses)+len(req.Params))
	for scopeID, cs := range req.Clauses {
		for _, c := range cs {
			if err := clause.Validate(c); err != nil {
				return nil, forge.BadRequest(fmt.Sprintf("scope %s: %v", scopeID, err))
			}
		}
		clauses[scopeID] = append(clauses[scopeID], cs...)
	}
	for scopeID, params := range req.Params {
		cs, err := clause.ParseParams(params)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("scope %s: %v", scopeID, err))
		}
		clauses[scopeID] = append(clauses[scopeID], cs...)
	}
	for scopeID := range clauses {
		if _, ok := u.Scope(scopeID); !ok {
			return nil, mapError(fmt.Errorf("%w: %s", facet.ErrScopeNotFound, scopeID))
		}
	}

	res, err := a.eng.ApplyClauses(ctx.Context(), u, clauses)
	if err != nil {
		return nil, mapError(err)
	}
	return res, ctx.JSON(http.StatusOK, res)
}

func (a *API) records(ctx forge.Context, _ *UserPathRequest) (*RecordsResponse, error) {
	sess, err := a.eng.Session(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}
	res, err := sess.Records(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}

	resp := &RecordsResponse{ApplyResult: res}
	u, st := sess.User(), sess.State()
	for _, scopeID := range st.ScopeIDs() {
		sc, _ := u.Scope(scopeID)
		composed := facet.Compose(sc, nil)
		resp.State = append(resp.State, ScopeStateResponse{
			ScopeID:  scopeID,
			Required: composed,
			Clauses:  st.Clauses(scopeID),
		})
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) options(ctx forge.Context, req *OptionsRequest) (*OptionsResponse, error) {
	field := clause.Field(req.Field)
	if !field.Known() {
		return nil, forge.BadRequest(fmt.Sprintf("unknown field %q", req.Field))
	}
	if field == clause.FieldCustomTag && req.TagKey == "" {
		return nil, forge.BadRequest("tag_key is required for custom_tag")
	}

	u, err := a.eng.GetUser(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}
	scopeID := ctx.Param("scopeId")
	opts, err := a.eng.Options(ctx.Context(), u, scopeID, field, req.TagKey)
	if err != nil {
		return nil, mapError(err)
	}
	sc, _ := u.Scope(scopeID)

	resp := &OptionsResponse{
		Field:   req.Field,
		TagKey:  req.TagKey,
		Access:  facet.PolicyFor(sc, field, req.TagKey).Access.String(),
		Options: opts,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) addableFields(ctx forge.Context, _ *ScopePathRequest) (*FieldsResponse, error) {
	sess, err := a.eng.Session(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}
	scopeID := ctx.Param("scopeId")
	fields, keys, err := sess.AddableFields(ctx.Context(), scopeID)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &FieldsResponse{ScopeID: scopeID, Fields: fields, TagKeys: keys}
	return resp, ctx.JSON(http.StatusOK, resp)
}
