package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/buildeasy/webverse/internal/server"
	"github.com/buildeasy/webverse/pkg/aem"
	"github.com/buildeasy/webverse/pkg/dam"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20 // 32 MiB

// DAMFoldersCreateRequest describes the market folder structure to create.
type DAMFoldersCreateRequest struct {
	DAMPath string `json:"dam_path"`
	Market  string `json:"market"`
	Locale  string `json:"locale"`
	Site    string `json:"site"`
}

func (req *DAMFoldersCreateRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DAMPath, validation.Required),
		validation.Field(&req.Market, validation.Required),
		validation.Field(&req.Locale, validation.Required),
		validation.Field(&req.Site, validation.Required,
			validation.In("HCP", "hcp", "Patient", "patient", "PATIENT", "Both", "both", "BOTH")),
	)
}

// DAMFoldersCreateResponse reports the created hierarchy.
type DAMFoldersCreateResponse struct {
	Success           bool     `json:"success"`
	Message           string   `json:"message"`
	HCPImagesPath     *string  `json:"hcp_images_path,omitempty"`
	HCPPDFsPath       *string  `json:"hcp_pdfs_path,omitempty"`
	PatientImagesPath *string  `json:"patient_images_path,omitempty"`
	PatientPDFsPath   *string  `json:"patient_pdfs_path,omitempty"`
	CreatedFolders    []string `json:"created_folders"`
	ErrorDetails      *string  `json:"error_details,omitempty"`
}

// DAMFoldersCreateHandler creates the market/locale/{site-type}/{Images,PDFs}
// DAM hierarchy. Re-running with the same inputs creates nothing and still
// succeeds.
// Route: POST /content/create-dam-folders
func DAMFoldersCreateHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req DAMFoldersCreateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("Failed to create DAM folders: %v", err))
			return
		}
		defer client.Close()

		result := dam.CreateFolderStructure(r.Context(), client, srv.Logger,
			req.DAMPath, req.Market, req.Locale, req.Site)

		resp := DAMFoldersCreateResponse{
			Success:        result.Success,
			Message:        result.Message,
			CreatedFolders: result.CreatedFolders,
		}
		if result.Success {
			resp.HCPImagesPath = stringPtr(result.HCPImagesPath)
			resp.HCPPDFsPath = stringPtr(result.HCPPDFsPath)
			resp.PatientImagesPath = stringPtr(result.PatientImagesPath)
			resp.PatientPDFsPath = stringPtr(result.PatientPDFsPath)
		} else {
			resp.Message = "Failed to create DAM folder structure"
			resp.ErrorDetails = stringPtr(result.Err.Error())
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// UploadOutcome is the per-file slice of the upload response.
type UploadOutcome struct {
	Success     bool    `json:"success"`
	Filename    string  `json:"filename"`
	DAMPath     *string `json:"dam_path,omitempty"`
	SizeBytes   int     `json:"size_bytes,omitempty"`
	ContentType string  `json:"content_type,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// AssetsUploadResponse aggregates per-file upload outcomes.
type AssetsUploadResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	UploadedImages  []UploadOutcome `json:"uploaded_images,omitempty"`
	UploadedPDFs    []UploadOutcome `json:"uploaded_pdfs,omitempty"`
	TotalSuccessful int             `json:"total_successful"`
	TotalFailed     int             `json:"total_failed"`
	ErrorDetails    *string         `json:"error_details,omitempty"`
}

// AssetsUploadHandler uploads images and PDFs into the DAM. The request is a
// multipart form with "images" and "pdfs" file parts and "images_path" /
// "pdfs_path" destination fields.
// Route: POST /content/upload-assets
func AssetsUploadHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest,
				fmt.Sprintf("invalid multipart request: %v", err))
			return
		}

		images, err := readFormFiles(r.MultipartForm.File["images"])
		if err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}
		pdfs, err := readFormFiles(r.MultipartForm.File["pdfs"])
		if err != nil {
			respondError(w, srv.Logger, http.StatusBadRequest, err.Error())
			return
		}

		imagesPath := r.FormValue("images_path")
		pdfsPath := r.FormValue("pdfs_path")

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("failed to create AEM client", "error", err)
			respondError(w, srv.Logger, http.StatusInternalServerError,
				fmt.Sprintf("File upload failed: %v", err))
			return
		}
		defer client.Close()

		result := dam.UploadFiles(r.Context(), client, srv.Logger,
			images, imagesPath, pdfs, pdfsPath)

		resp := AssetsUploadResponse{
			Success:         result.Success,
			Message:         result.Message,
			UploadedImages:  uploadOutcomes(result.UploadedImages),
			UploadedPDFs:    uploadOutcomes(result.UploadedPDFs),
			TotalSuccessful: result.TotalSuccessful,
			TotalFailed:     result.TotalFailed,
		}
		if result.Err != nil {
			resp.ErrorDetails = stringPtr(result.Err.Error())
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// readFormFiles loads multipart file parts into memory for upload.
func readFormFiles(headers []*multipart.FileHeader) ([]dam.File, error) {
	var files []dam.File
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("error reading uploaded file %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading uploaded file %s: %w", header.Filename, err)
		}
		files = append(files, dam.File{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func uploadOutcomes(results []dam.UploadResult) []UploadOutcome {
	var outcomes []UploadOutcome
	for _, r := range results {
		outcome := UploadOutcome{
			Success:     r.Success,
			Filename:    r.Filename,
			SizeBytes:   r.SizeBytes,
			ContentType: r.ContentType,
		}
		if r.Success {
			outcome.DAMPath = stringPtr(r.DAMPath)
		} else if r.Err != nil {
			outcome.Error = stringPtr(r.Err.Error())
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
