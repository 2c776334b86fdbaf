package api

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/iancoleman/strcase"

	"github.com/buildeasy/webverse/internal/server"
	"github.com/buildeasy/webverse/pkg/aem"
	"github.com/buildeasy/webverse/pkg/content"
)

// destinationParentPath is where duplicated market templates are created.
const destinationParentPath = "/content/buildeasy/mava"

// defaultFragmentBasePath is the experience fragment root used when a
// request does not name one.
const defaultFragmentBasePath = "/content/experience-fragments"

// DuplicateTemplateRequest names the template to clone and the market it is
// cloned for.
type DuplicateTemplateRequest struct {
	MarketRegion string `json:"market_region"`
	SourcePath   string `json:"source_path"`
}

func (req *DuplicateTemplateRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.MarketRegion, validation.Required),
		validation.Field(&req.SourcePath, validation.Required),
	)
}

// DuplicateTemplateResponse reports the new template path.
type DuplicateTemplateResponse struct {
	Success         bool    `json:"success"`
	NewTemplatePath *string `json:"new_template_path,omitempty"`
	ErrorDetails    *string `json:"error_details,omitempty"`
}

// DuplicateTemplateHandler clones an empty page template for a market
// region. The market label is sanitized into a deterministic destination
// segment ("New Zealand" becomes hcp-new-zealand). The AEM instance is
// probed first and the request fails fast with a client error when it is
// unreachable.
// Route: POST /sites/duplicate-template
func DuplicateTemplateHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req DuplicateTemplateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		newPageName := "hcp-" + strcase.ToKebab(req.MarketRegion)
		newPageTitle := "hcp-" + req.MarketRegion

		srv.Logger.Info("duplicating template", "market_region", req.MarketRegion)

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Error duplicating template for %s: %v", req.MarketRegion, err))
			return
		}
		defer client.Close()

		if !client.TestConnection(r.Context()) {
			respondError(w, srv.Logger, http.StatusBadRequest, aem.ErrNotReachable.Error())
			return
		}

		newPath, err := client.DuplicatePageTemplate(r.Context(),
			req.SourcePath, destinationParentPath, newPageName, newPageTitle,
			map[string]any{
				"marketRegion":   req.MarketRegion,
				"templateType":   "duplicated-mava-template",
				"sourceTemplate": req.SourcePath,
			})

		resp := DuplicateTemplateResponse{}
		if err != nil {
			srv.Logger.Error("template duplication failed", "error", err)
			resp.ErrorDetails = stringPtr(err.Error())
		} else {
			srv.Logger.Info("template duplication successful", "path", newPath)
			resp.Success = true
			resp.NewTemplatePath = stringPtr(newPath)
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// ListPagesRequest names the site subtree to read.
type ListPagesRequest struct {
	SitePath string `json:"site_path"`
}

func (req *ListPagesRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.SitePath, validation.Required),
	)
}

// ListPagesResponse carries the complete JCR tree under the site path.
type ListPagesResponse struct {
	Success      bool           `json:"success"`
	SitePath     string         `json:"site_path,omitempty"`
	JCRContent   map[string]any `json:"jcr_content,omitempty"`
	ErrorDetails *string        `json:"error_details,omitempty"`
}

// ListPagesHandler reads all pages and JCR nodes under a site path. A path
// with no corresponding node is a handled "not found" condition, not a
// server error.
// Route: POST /sites/list-pages
func ListPagesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req ListPagesRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		srv.Logger.Info("listing pages", "site_path", req.SitePath)

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Error listing pages from %s: %v", req.SitePath, err))
			return
		}
		defer client.Close()

		if !client.TestConnection(r.Context()) {
			respondError(w, srv.Logger, http.StatusBadRequest, aem.ErrNotReachable.Error())
			return
		}

		jcrContent, err := client.ListPages(r.Context(), req.SitePath)
		if err != nil {
			srv.Logger.Error("error retrieving pages", "site_path", req.SitePath, "error", err)

			status := http.StatusNotFound
			var readErr *aem.ReadError
			if errors.As(err, &readErr) && readErr.StatusCode == 0 {
				// Transport failure rather than a missing node.
				status = http.StatusInternalServerError
			}
			respondJSON(w, srv.Logger, status, ListPagesResponse{
				SitePath: req.SitePath,
				ErrorDetails: stringPtr(
					fmt.Sprintf("Site path not found or inaccessible: %s", req.SitePath)),
			})
			return
		}

		resp := ListPagesResponse{SitePath: req.SitePath}
		if len(jcrContent) == 0 {
			srv.Logger.Warn("no content found at site path", "site_path", req.SitePath)
			resp.ErrorDetails = stringPtr(fmt.Sprintf("No content found at path: %s", req.SitePath))
		} else {
			resp.Success = true
			resp.JCRContent = jcrContent
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// FragmentsCreateRequest names the market to create fragments for.
type FragmentsCreateRequest struct {
	Market   string `json:"market"`
	BasePath string `json:"base_xf_path"`
}

func (req *FragmentsCreateRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Market, validation.Required),
	)
}

// FragmentOutcome is the per-fragment slice of the response.
type FragmentOutcome struct {
	Name    string  `json:"name"`
	Success bool    `json:"success"`
	Path    *string `json:"path,omitempty"`
	Title   *string `json:"title,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// FragmentsCreateResponse aggregates per-fragment outcomes.
type FragmentsCreateResponse struct {
	Success bool              `json:"success"`
	Market  string            `json:"market"`
	Results []FragmentOutcome `json:"results"`
	Summary struct {
		Total      int `json:"total"`
		Successful int `json:"successful"`
		Failed     int `json:"failed"`
	} `json:"summary"`
}

// FragmentsCreateHandler creates the catalog experience fragments for a
// market. Fragments are created independently; the aggregate succeeds only
// when all of them do.
// Route: POST /sites/create-experience-fragments
func FragmentsCreateHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req FragmentsCreateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		basePath := req.BasePath
		if basePath == "" {
			basePath = defaultFragmentBasePath
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Error creating experience fragments for %s: %v", req.Market, err))
			return
		}
		defer client.Close()

		result := content.CreateExperienceFragments(r.Context(), client, srv.Logger, req.Market, basePath)

		resp := FragmentsCreateResponse{
			Success: result.Success,
			Market:  result.Market,
		}
		resp.Summary.Total = result.Total
		resp.Summary.Successful = result.Successful
		resp.Summary.Failed = result.Failed
		for _, fr := range result.Results {
			outcome := FragmentOutcome{Name: fr.Name, Success: fr.Success}
			if fr.Success {
				outcome.Path = stringPtr(fr.Path)
				outcome.Title = stringPtr(fr.Title)
			} else {
				outcome.Error = stringPtr(fr.Err.Error())
			}
			resp.Results = append(resp.Results, outcome)
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}
