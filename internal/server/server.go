package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"claimline/internal/domain"
	"claimline/internal/engine"
	"claimline/internal/export"
	"claimline/internal/repo"
	"claimline/internal/validation"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   *engine.Engine
	Repo     repo.Repo
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"item not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the claim pipeline API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Claimline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerItems(group, cfg.Repo)
	registerClaims(group, cfg)
	registerProgress(group, cfg.Engine)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrNoItemsSelected):
		return newAPIError(http.StatusBadRequest, "no_items_selected", err.Error(), nil)
	case errors.Is(err, engine.ErrAssemblyInProgress):
		return newAPIError(http.StatusConflict, "assembly_in_progress", err.Error(), nil)
	case errors.Is(err, export.ErrMissingDocumentation):
		return newAPIError(http.StatusUnprocessableEntity, "missing_documentation", err.Error(), nil)
	case errors.Is(err, export.ErrPackageGenerationFailed):
		return newAPIError(http.StatusInternalServerError, "package_generation_failed", err.Error(), nil)
	}
	var ide *validation.InsufficientDocumentationError
	if errors.As(err, &ide) {
		return newAPIError(http.StatusUnprocessableEntity, "insufficient_documentation", err.Error(), map[string]any{"missing": ide.Missing})
	}
	var vfe *validation.ValidationFailedError
	if errors.As(err, &vfe) {
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", err.Error(), map[string]any{"reasons": vfe.Reasons})
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerItems(api huma.API, r repo.Repo) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/items",
		Summary:     "List inventory items",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Room string `query:"room"`
	}) (*struct {
		Body []ItemResponse `json:"body"`
	}, error) {
		var items []domain.Item
		var err error
		if input.Room != "" {
			items, err = r.ListItemsByRoom(ctx, input.Room)
		} else {
			items, err = r.ListItems(ctx)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []ItemResponse `json:"body"`
		}{Body: mapItems(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/items/{id}",
		Summary:     "Get inventory item",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ItemResponse `json:"body"`
	}, error) {
		it, err := r.GetItem(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ItemResponse `json:"body"`
		}{Body: itemResponse(it)}, nil
	})
}

func registerClaims(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "validate-claim",
		Method:      http.MethodPost,
		Path:        "/claims/validate",
		Summary:     "Run pre-submission validation",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		Body ValidateClaimRequest `json:"body"`
	}) (*struct {
		Body ValidationResultsResponse `json:"body"`
	}, error) {
		if input.Body.ClaimType == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "claim_type is required", nil)
		}
		items, err := selectItems(ctx, cfg.Repo, input.Body.ItemIDs, "")
		if err != nil {
			return nil, handleError(err)
		}
		results, err := cfg.Engine.Validator.ValidateClaim(items, domain.ClaimType(input.Body.ClaimType), input.Body.Insurer)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ValidationResultsResponse `json:"body"`
		}{Body: validationResultsResponse(results)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "assemble-claim",
		Method:        http.MethodPost,
		Path:          "/claims/assemble",
		Summary:       "Assemble a claim package",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body AssembleRequest `json:"body"`
	}) (*struct {
		Body PackageResponse `json:"body"`
	}, error) {
		if input.Body.Scenario.Type == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "scenario.type is required", nil)
		}
		if _, authErr := actorIDFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := selectItems(ctx, cfg.Repo, input.Body.ItemIDs, input.Body.Room)
		if err != nil {
			return nil, handleError(err)
		}
		opts := domain.DefaultPackageOptions()
		if input.Body.Options != nil {
			opts = *input.Body.Options
		}
		pkg, err := cfg.Engine.Assemble(ctx, input.Body.Scenario.scenario(), items, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PackageResponse `json:"body"`
		}{Body: packageResponse(pkg)}, nil
	})
}

func registerProgress(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "claim-progress",
		Method:      http.MethodGet,
		Path:        "/claims/progress",
		Summary:     "Latest assembly progress",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ProgressResponse `json:"body"`
	}, error) {
		return &struct {
			Body ProgressResponse `json:"body"`
		}{Body: progressResponse(e.Progress(), e.LastError())}, nil
	})
}

func selectItems(ctx context.Context, r repo.Repo, ids []string, room string) ([]domain.Item, error) {
	if len(ids) > 0 {
		items := make([]domain.Item, 0, len(ids))
		for _, id := range ids {
			it, err := r.GetItem(ctx, id)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		return items, nil
	}
	if room != "" {
		return r.ListItemsByRoom(ctx, room)
	}
	return r.ListItems(ctx)
}
