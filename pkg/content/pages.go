// Package content implements the page authoring helpers: one operation per
// page category, all sharing the same contract — validate the JCR payload is
// present, then issue a single write through the repository client. Expected
// failures (missing content, non-2xx write) are returned as structured
// results, never panics, and nothing is retried.
package content

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/pkg/aem"
)

// Compile-time check — the repository client satisfies the fragment interface.
var _ FragmentClient = (*aem.Client)(nil)

// UpdateResult is the outcome of a single page update.
type UpdateResult struct {
	Success  bool
	PagePath string
	// Skipped means the operation had nothing to do (nil payload on an
	// optional update) and no write was issued.
	Skipped bool
	Err     error
}

// updatePage validates the payload and issues one write. The client appends
// the _charset_ encoding directive on the wire.
func updatePage(ctx context.Context, client *aem.Client, pagePath string, jcrContent map[string]any) UpdateResult {
	if len(jcrContent) == 0 {
		return UpdateResult{PagePath: pagePath, Err: aem.ErrMissingContent}
	}

	if err := client.WritePage(ctx, pagePath, jcrContent); err != nil {
		return UpdateResult{PagePath: pagePath, Err: err}
	}

	return UpdateResult{Success: true, PagePath: pagePath}
}

// UpdateErrorPage updates an existing error page (404 or 500) with JCR
// content. errorType is only used for logging; both pages share one shape.
func UpdateErrorPage(ctx context.Context, client *aem.Client, logger hclog.Logger, pagePath, errorType string, jcrContent map[string]any) UpdateResult {
	logger.Info("updating error page", "type", errorType, "path", pagePath)

	result := updatePage(ctx, client, pagePath, jcrContent)
	if result.Err != nil {
		logger.Error("error page update failed", "type", errorType, "path", pagePath, "error", result.Err)
	}
	return result
}

// UpdateProtectedPage updates an existing protected page with JCR content.
func UpdateProtectedPage(ctx context.Context, client *aem.Client, logger hclog.Logger, pagePath string, jcrContent map[string]any) UpdateResult {
	logger.Info("updating protected page", "path", pagePath)

	result := updatePage(ctx, client, pagePath, jcrContent)
	if result.Err != nil {
		logger.Error("protected page update failed", "path", pagePath, "error", result.Err)
	}
	return result
}

// UpdateModalPopup updates an existing HCP modal popup page with JCR content.
func UpdateModalPopup(ctx context.Context, client *aem.Client, logger hclog.Logger, pagePath string, jcrContent map[string]any) UpdateResult {
	logger.Info("updating HCP modal popup", "path", pagePath)

	result := updatePage(ctx, client, pagePath, jcrContent)
	if result.Err != nil {
		logger.Error("HCP modal popup update failed", "path", pagePath, "error", result.Err)
	}
	return result
}

// UpdateLoginPage updates an existing login page with JCR content.
func UpdateLoginPage(ctx context.Context, client *aem.Client, logger hclog.Logger, pagePath string, jcrContent map[string]any) UpdateResult {
	logger.Info("updating login page", "path", pagePath)

	result := updatePage(ctx, client, pagePath, jcrContent)
	if result.Err != nil {
		logger.Error("login page update failed", "path", pagePath, "error", result.Err)
	}
	return result
}

// ModifyLocale updates a site's locale node. A nil payload means the caller
// has nothing to change: the operation is skipped and reported as success.
// An empty non-nil payload is a caller error.
func ModifyLocale(ctx context.Context, client *aem.Client, logger hclog.Logger, pagePath string, jcrContent map[string]any) UpdateResult {
	if jcrContent == nil {
		logger.Info("no locale content provided, skipping modification", "path", pagePath)
		return UpdateResult{Success: true, Skipped: true, PagePath: pagePath}
	}

	logger.Info("modifying site locale", "path", pagePath)

	result := updatePage(ctx, client, pagePath, jcrContent)
	if result.Err != nil {
		logger.Error("locale modification failed", "path", pagePath, "error", result.Err)
	}
	return result
}
