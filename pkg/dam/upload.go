package dam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/pkg/aem"
)

// Compile-time check — the repository client satisfies the upload interface.
var _ UploadClient = (*aem.Client)(nil)

// File kinds accepted by UploadFile.
const (
	KindImage = "image"
	KindPDF   = "pdf"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".bmp": true, ".tiff": true, ".ico": true,
}

var pdfExtensions = map[string]bool{
	".pdf": true,
}

// UploadClient is the subset of the repository client that uploads need.
type UploadClient interface {
	UploadAsset(ctx context.Context, damPath, filename, contentType string, data []byte) error
	AssetsRoot() string
}

// File is one binary payload to upload.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadResult reports the outcome of one file upload.
type UploadResult struct {
	Success     bool
	Filename    string
	DAMPath     string
	SizeBytes   int
	ContentType string
	Err         error
}

// BatchResult aggregates per-file upload outcomes. Success is true only when
// every file uploaded.
type BatchResult struct {
	Success         bool
	Message         string
	UploadedImages  []UploadResult
	UploadedPDFs    []UploadResult
	TotalSuccessful int
	TotalFailed     int
	Err             error
}

// UploadFile uploads a single image or PDF into the DAM. The file extension
// is validated against the allow-list for the kind before any network call,
// and the destination path is forced under the configured DAM root.
func UploadFile(ctx context.Context, client UploadClient, logger hclog.Logger, file File, damPath, kind string) UploadResult {
	logger.Info("uploading file to DAM", "kind", kind, "filename", file.Filename, "path", damPath)

	if file.Filename == "" || len(file.Data) == 0 {
		return UploadResult{Err: fmt.Errorf("no file provided")}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtension(ext, kind) {
		return UploadResult{
			Filename: file.Filename,
			Err:      fmt.Errorf("invalid file type %q for %s upload", ext, kind),
		}
	}

	damRoot := client.AssetsRoot()
	if !strings.HasPrefix(damPath, damRoot) {
		damPath = damRoot + "/" + strings.TrimLeft(damPath, "/")
	}

	if err := client.UploadAsset(ctx, damPath, file.Filename, file.ContentType, file.Data); err != nil {
		logger.Error("file upload failed", "filename", file.Filename, "error", err)
		return UploadResult{Filename: file.Filename, Err: err}
	}

	assetPath := damPath + "/" + file.Filename
	logger.Info("uploaded file", "filename", file.Filename, "path", assetPath)

	return UploadResult{
		Success:     true,
		Filename:    file.Filename,
		DAMPath:     assetPath,
		SizeBytes:   len(file.Data),
		ContentType: file.ContentType,
	}
}

// UploadFiles uploads batches of images and PDFs sequentially, aggregating
// per-file results. Calling with neither images nor PDFs fails before any
// network call.
func UploadFiles(ctx context.Context, client UploadClient, logger hclog.Logger, images []File, imagesPath string, pdfs []File, pdfsPath string) BatchResult {
	if len(images) == 0 && len(pdfs) == 0 {
		return BatchResult{
			Message: "No files provided for upload",
			Err:     fmt.Errorf("at least one image or PDF must be provided"),
		}
	}

	var result BatchResult
	var messages []string

	if len(images) > 0 && imagesPath != "" {
		logger.Info("uploading images", "count", len(images), "path", imagesPath)
		successful := 0
		for _, image := range images {
			r := UploadFile(ctx, client, logger, image, imagesPath, KindImage)
			result.UploadedImages = append(result.UploadedImages, r)
			if r.Success {
				successful++
			}
		}
		failed := len(images) - successful
		result.TotalSuccessful += successful
		result.TotalFailed += failed
		if successful > 0 {
			messages = append(messages, fmt.Sprintf("Uploaded %d of %d image(s)", successful, len(images)))
		}
		if failed > 0 {
			messages = append(messages, fmt.Sprintf("%d image(s) failed", failed))
		}
	}

	if len(pdfs) > 0 && pdfsPath != "" {
		logger.Info("uploading PDFs", "count", len(pdfs), "path", pdfsPath)
		successful := 0
		for _, pdf := range pdfs {
			r := UploadFile(ctx, client, logger, pdf, pdfsPath, KindPDF)
			result.UploadedPDFs = append(result.UploadedPDFs, r)
			if r.Success {
				successful++
			}
		}
		failed := len(pdfs) - successful
		result.TotalSuccessful += successful
		result.TotalFailed += failed
		if successful > 0 {
			messages = append(messages, fmt.Sprintf("Uploaded %d of %d PDF(s)", successful, len(pdfs)))
		}
		if failed > 0 {
			messages = append(messages, fmt.Sprintf("%d PDF(s) failed", failed))
		}
	}

	result.Success = result.TotalFailed == 0
	if len(messages) > 0 {
		result.Message = strings.Join(messages, ". ")
	} else {
		result.Message = "No files uploaded"
	}

	return result
}

func allowedExtension(ext, kind string) bool {
	switch strings.ToLower(kind) {
	case KindImage:
		return imageExtensions[ext]
	case KindPDF:
		return pdfExtensions[ext]
	default:
		return imageExtensions[ext] || pdfExtensions[ext]
	}
}
