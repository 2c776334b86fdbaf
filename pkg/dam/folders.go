// Package dam manages the Digital Asset Management subtree: folder structure
// creation for new markets and binary asset uploads.
package dam

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/pkg/aem"
)

// Site types accepted by CreateFolderStructure.
const (
	SiteHCP     = "HCP"
	SitePatient = "Patient"
	SiteBoth    = "Both"
)

// FolderClient is the subset of the repository client that folder operations
// need.
type FolderClient interface {
	FolderExists(ctx context.Context, folderPath string) bool
	CreateFolder(ctx context.Context, folderPath, title string) error
}

// FolderStructureResult reports the outcome of a folder-structure creation.
// CreatedFolders lists only folders created by this invocation; re-running
// with the same inputs yields an empty list and Success=true.
type FolderStructureResult struct {
	Success           bool
	Message           string
	HCPImagesPath     string
	HCPPDFsPath       string
	PatientImagesPath string
	PatientPDFsPath   string
	CreatedFolders    []string
	Err               error
}

// CreateFolderStructure builds the market/locale/{site-type}/{Images,PDFs}
// hierarchy under the DAM base path. Every level is checked for existence
// before creation, so the operation is idempotent. Creation aborts at the
// first level that cannot be created; earlier levels are left in place (no
// rollback).
func CreateFolderStructure(ctx context.Context, client FolderClient, logger hclog.Logger, damPath, market, locale, site string) FolderStructureResult {
	logger.Info("creating DAM folder structure",
		"market", market, "locale", locale, "site", site)

	siteTypes, err := resolveSiteTypes(site)
	if err != nil {
		return FolderStructureResult{Err: err}
	}

	damPath = strings.TrimRight(damPath, "/")
	marketPath := damPath + "/" + market
	localePath := marketPath + "/" + locale

	result := FolderStructureResult{Success: true}

	if err := ensureFolder(ctx, client, logger, &result, marketPath, market); err != nil {
		return FolderStructureResult{Err: fmt.Errorf("failed to create market folder: %s: %w", marketPath, err)}
	}

	if err := ensureFolder(ctx, client, logger, &result, localePath, locale); err != nil {
		return FolderStructureResult{Err: fmt.Errorf("failed to create locale folder: %s: %w", localePath, err)}
	}

	for _, siteType := range siteTypes {
		sitePath := localePath + "/" + siteType
		if err := ensureFolder(ctx, client, logger, &result, sitePath, siteType); err != nil {
			return FolderStructureResult{Err: fmt.Errorf("failed to create site folder: %s: %w", sitePath, err)}
		}

		imagesPath := sitePath + "/Images"
		if err := ensureFolder(ctx, client, logger, &result, imagesPath, "Images"); err != nil {
			return FolderStructureResult{Err: fmt.Errorf("failed to create Images folder: %s: %w", imagesPath, err)}
		}

		pdfsPath := sitePath + "/PDFs"
		if err := ensureFolder(ctx, client, logger, &result, pdfsPath, "PDFs"); err != nil {
			return FolderStructureResult{Err: fmt.Errorf("failed to create PDFs folder: %s: %w", pdfsPath, err)}
		}

		switch siteType {
		case SiteHCP:
			result.HCPImagesPath = imagesPath
			result.HCPPDFsPath = pdfsPath
		case SitePatient:
			result.PatientImagesPath = imagesPath
			result.PatientPDFsPath = pdfsPath
		}
	}

	if n := len(result.CreatedFolders); n > 0 {
		result.Message = fmt.Sprintf("Successfully created %d folder(s)", n)
	} else {
		result.Message = "All folders already exist"
	}

	logger.Info("folder structure creation completed", "message", result.Message)
	return result
}

// ensureFolder creates a folder only if it does not already exist, recording
// new folders in the result.
func ensureFolder(ctx context.Context, client FolderClient, logger hclog.Logger, result *FolderStructureResult, path, title string) error {
	if client.FolderExists(ctx, path) {
		logger.Info("folder already exists", "path", path)
		return nil
	}

	if err := client.CreateFolder(ctx, path, title); err != nil {
		return err
	}

	result.CreatedFolders = append(result.CreatedFolders, path)
	return nil
}

func resolveSiteTypes(site string) ([]string, error) {
	switch strings.ToUpper(site) {
	case "HCP":
		return []string{SiteHCP}, nil
	case "PATIENT":
		return []string{SitePatient}, nil
	case "BOTH":
		return []string{SiteHCP, SitePatient}, nil
	default:
		return nil, fmt.Errorf("invalid site type %q: must be 'HCP', 'Patient', or 'Both'", site)
	}
}

// Compile-time check — the repository client satisfies the folder interface.
var _ FolderClient = (*aem.Client)(nil)
