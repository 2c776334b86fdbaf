package api

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/buildeasy/webverse/internal/server"
	"github.com/buildeasy/webverse/pkg/aem"
	"github.com/buildeasy/webverse/pkg/content"
)

// PageUpdateRequest is the shared request shape for single-page updates.
// The JCR content is opaque: a mapping of repository property paths to
// values, passed through to AEM unvalidated beyond "must be non-empty",
// which the update helper enforces before any network call.
type PageUpdateRequest struct {
	PagePath   string         `json:"page_path"`
	JCRContent map[string]any `json:"jcr_content"`
}

func (req *PageUpdateRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PagePath, validation.Required),
	)
}

// PageUpdateResponse is the shared response shape for single-page updates.
type PageUpdateResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	PagePath     *string `json:"page_path,omitempty"`
	ErrorDetails *string `json:"error_details,omitempty"`
}

// PageGetRequest is the shared request shape for single-page reads.
type PageGetRequest struct {
	PagePath string `json:"page_path"`
}

func (req *PageGetRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PagePath, validation.Required),
	)
}

// PageGetResponse is the shared response shape for single-page reads.
type PageGetResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	PageContent  map[string]any `json:"page_content,omitempty"`
	ErrorDetails *string        `json:"error_details,omitempty"`
}

// updateFunc is a page-category update helper from pkg/content.
type updateFunc func(ctx context.Context, client *aem.Client, logger hclog.Logger, pagePath string, jcrContent map[string]any) content.UpdateResult

// ProtectedPageUpdateHandler updates a protected page with JCR content.
// Route: POST /content/protected-page
func ProtectedPageUpdateHandler(srv server.Server) http.Handler {
	return pageUpdateHandler(srv, "protected page", content.UpdateProtectedPage)
}

// ProtectedPageGetHandler fetches a protected page.
// Route: POST /content/get-protected-page
func ProtectedPageGetHandler(srv server.Server) http.Handler {
	return pageGetHandler(srv, "protected page")
}

// ModalPopupUpdateHandler updates an HCP modal popup page with JCR content.
// Route: POST /content/create-hcp-modal-popup
func ModalPopupUpdateHandler(srv server.Server) http.Handler {
	return pageUpdateHandler(srv, "HCP modal popup", content.UpdateModalPopup)
}

// ModalPopupGetHandler fetches an HCP modal popup page.
// Route: POST /content/hcp-modal-popup
func ModalPopupGetHandler(srv server.Server) http.Handler {
	return pageGetHandler(srv, "HCP modal popup")
}

// LoginPageUpdateHandler updates a login page with JCR content.
// Route: POST /content/create-login-page
func LoginPageUpdateHandler(srv server.Server) http.Handler {
	return pageUpdateHandler(srv, "login page", content.UpdateLoginPage)
}

// LoginPageGetHandler fetches a login page.
// Route: POST /content/login-page
func LoginPageGetHandler(srv server.Server) http.Handler {
	return pageGetHandler(srv, "login page")
}

// pageUpdateHandler builds a handler around one page-category update helper.
// Expected failures (missing content, rejected write) are handled outcomes:
// HTTP 200 with success=false and the underlying detail.
func pageUpdateHandler(srv server.Server, label string, update updateFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req PageUpdateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Failed to update %s: %v", label, err))
			return
		}
		defer client.Close()

		result := update(r.Context(), client, srv.Logger, req.PagePath, req.JCRContent)

		resp := PageUpdateResponse{Success: result.Success}
		if result.Success {
			resp.Message = fmt.Sprintf("Successfully updated %s", label)
			resp.PagePath = stringPtr(result.PagePath)
		} else {
			resp.Message = fmt.Sprintf("Failed to update %s", label)
			resp.ErrorDetails = stringPtr(result.Err.Error())
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// pageGetHandler builds a handler that reads one page's JCR tree.
func pageGetHandler(srv server.Server, label string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req PageGetRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Failed to fetch %s: %v", label, err))
			return
		}
		defer client.Close()

		pageContent, err := client.GetPage(r.Context(), req.PagePath)

		resp := PageGetResponse{}
		if err != nil {
			srv.Logger.Error("page fetch failed", "path", req.PagePath, "error", err)
			resp.Message = fmt.Sprintf("Failed to retrieve %s", label)
			resp.ErrorDetails = stringPtr(
				fmt.Sprintf("Failed to fetch %s at %s: %v", label, req.PagePath, err))
		} else {
			resp.Success = true
			resp.Message = fmt.Sprintf("Successfully retrieved %s", label)
			resp.PageContent = pageContent
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// ErrorPagesCreateRequest carries both error-page payloads.
type ErrorPagesCreateRequest struct {
	PagePath404   string         `json:"page_path_404"`
	PagePath500   string         `json:"page_path_500"`
	JCRContent404 map[string]any `json:"jcr_content_404"`
	JCRContent500 map[string]any `json:"jcr_content_500"`
}

func (req *ErrorPagesCreateRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PagePath404, validation.Required),
		validation.Field(&req.PagePath500, validation.Required),
	)
}

// ErrorPagesCreateResponse reports the aggregate outcome of the pair.
type ErrorPagesCreateResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	ErrorDetails *string `json:"error_details,omitempty"`
}

// ErrorPagesCreateHandler writes both the 404 and 500 error-page payloads.
// The two writes are sequential and independent: a failure in one does not
// roll back the other, and partial success is reported as an aggregate
// failure naming the failed page(s).
// Route: POST /content/create-error-pages
func ErrorPagesCreateHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req ErrorPagesCreateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Failed to create error pages: %v", err))
			return
		}
		defer client.Close()

		var errs *multierror.Error

		result404 := content.UpdateErrorPage(r.Context(), client, srv.Logger,
			req.PagePath404, "404", req.JCRContent404)
		if !result404.Success {
			errs = multierror.Append(errs, fmt.Errorf("404 page: %w", result404.Err))
		}

		result500 := content.UpdateErrorPage(r.Context(), client, srv.Logger,
			req.PagePath500, "500", req.JCRContent500)
		if !result500.Success {
			errs = multierror.Append(errs, fmt.Errorf("500 page: %w", result500.Err))
		}

		resp := ErrorPagesCreateResponse{Success: errs.ErrorOrNil() == nil}
		if resp.Success {
			resp.Message = "Successfully updated 404 and 500 error pages"
			srv.Logger.Info(resp.Message)
		} else {
			resp.Message = "Partial success: Some error page updates failed"
			resp.ErrorDetails = stringPtr(errs.Error())
			srv.Logger.Warn(resp.Message, "error", errs)
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// ErrorPagesGetRequest names both error pages to fetch.
type ErrorPagesGetRequest struct {
	PagePath404 string `json:"page_path_404"`
	PagePath500 string `json:"page_path_500"`
}

func (req *ErrorPagesGetRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PagePath404, validation.Required),
		validation.Field(&req.PagePath500, validation.Required),
	)
}

// ErrorPagesGetResponse carries both pages' content; either may be absent on
// partial retrieval.
type ErrorPagesGetResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Page404      map[string]any `json:"page_404,omitempty"`
	Page500      map[string]any `json:"page_500,omitempty"`
	ErrorDetails *string        `json:"error_details,omitempty"`
}

// ErrorPagesGetHandler fetches both error pages' JCR trees.
// Route: POST /content/error-pages
func ErrorPagesGetHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req ErrorPagesGetRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Failed to fetch error pages: %v", err))
			return
		}
		defer client.Close()

		var errs *multierror.Error

		page404, err := client.GetPage(r.Context(), req.PagePath404)
		if err != nil {
			errs = multierror.Append(errs,
				fmt.Errorf("failed to fetch 404 page at %s: %w", req.PagePath404, err))
		}

		page500, err := client.GetPage(r.Context(), req.PagePath500)
		if err != nil {
			errs = multierror.Append(errs,
				fmt.Errorf("failed to fetch 500 page at %s: %w", req.PagePath500, err))
		}

		resp := ErrorPagesGetResponse{
			Page404: page404,
			Page500: page500,
		}
		switch {
		case page404 != nil && page500 != nil:
			resp.Success = true
			resp.Message = "Successfully retrieved both error pages"
		case page404 != nil || page500 != nil:
			resp.Message = "Partially retrieved error pages"
		default:
			resp.Message = "Failed to retrieve error pages"
		}
		if errs != nil {
			resp.ErrorDetails = stringPtr(errs.Error())
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// LocaleModifyResponse extends the update response with the skip marker for
// requests carrying no locale content.
type LocaleModifyResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Skipped      bool    `json:"skipped,omitempty"`
	PagePath     *string `json:"page_path,omitempty"`
	ErrorDetails *string `json:"error_details,omitempty"`
}

// LocaleModifyHandler modifies a site's locale node. A request without a
// jcr_content field is a no-op reported as success; an explicitly empty
// mapping is a caller error.
// Route: POST /content/modify-locale
func LocaleModifyHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req PageUpdateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Failed to modify locale: %v", err))
			return
		}
		defer client.Close()

		result := content.ModifyLocale(r.Context(), client, srv.Logger, req.PagePath, req.JCRContent)

		resp := LocaleModifyResponse{Success: result.Success, Skipped: result.Skipped}
		switch {
		case result.Skipped:
			resp.Message = "Locale modification skipped - no content provided"
			resp.PagePath = stringPtr(result.PagePath)
		case result.Success:
			resp.Message = fmt.Sprintf("Locale modified at %s", result.PagePath)
			resp.PagePath = stringPtr(result.PagePath)
		default:
			resp.Message = "Failed to modify site locale"
			resp.ErrorDetails = stringPtr(result.Err.Error())
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}
