package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/iancoleman/strcase"
)

// FragmentTemplate describes one entry in the fixed experience fragment
// catalog: where its HTML template asset lives and where the fragment is
// created relative to the market base path.
type FragmentTemplate struct {
	Name      string
	AssetPath string // template asset, relative to the DAM assets root
	Title     string // display title, market name appended at build time
}

// fragmentCatalog is the fixed set of experience fragments created for a
// market. Order is the creation order.
var fragmentCatalog = []FragmentTemplate{
	{Name: "header", AssetPath: "/commercial/mava-international/templates/header.html", Title: "Header"},
	{Name: "footer", AssetPath: "/commercial/mava-international/templates/footer.html", Title: "Footer"},
	{Name: "login-footer", AssetPath: "/commercial/mava-international/templates/loginfooter.html", Title: "Login Footer"},
	{Name: "popup", AssetPath: "/commercial/mava-international/templates/404.html", Title: "Popup"},
	{Name: "profile", AssetPath: "/commercial/mava-international/templates/profile.html", Title: "Profile"},
}

// FragmentResult is the outcome of creating a single experience fragment.
type FragmentResult struct {
	Name    string
	Success bool
	Path    string
	Title   string
	Err     error
}

// FragmentsResult aggregates per-fragment outcomes for one market. Success
// is true only when every fragment in the catalog was created.
type FragmentsResult struct {
	Success    bool
	Market     string
	Results    []FragmentResult
	Total      int
	Successful int
	Failed     int
}

// CreateExperienceFragments creates the five catalog experience fragments
// (header, footer, login-footer, popup, profile) for a market. Each fragment
// is processed independently: a failure in one does not abort the others.
func CreateExperienceFragments(ctx context.Context, client FragmentClient, logger hclog.Logger, market, basePath string) FragmentsResult {
	result := FragmentsResult{
		Market: market,
		Total:  len(fragmentCatalog),
	}

	logger.Info("creating experience fragments", "market", market, "base_path", basePath)

	marketFolder := basePath + "/" + market

	for _, tpl := range fragmentCatalog {
		fr := createFragment(ctx, client, logger, tpl, market, marketFolder)
		result.Results = append(result.Results, fr)
		if fr.Success {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	result.Success = result.Successful == result.Total
	return result
}

// FragmentClient is the subset of the repository client that fragment
// creation needs. Narrowed for testability.
type FragmentClient interface {
	GetAsset(ctx context.Context, assetPath string) (string, error)
	FolderExists(ctx context.Context, folderPath string) bool
	CreateFolder(ctx context.Context, folderPath, title string) error
	WritePage(ctx context.Context, pagePath string, props map[string]any) error
}

func createFragment(ctx context.Context, client FragmentClient, logger hclog.Logger, tpl FragmentTemplate, market, marketFolder string) FragmentResult {
	fragmentPath := marketFolder + "/" + tpl.Name
	title := fmt.Sprintf("%s - %s", tpl.Title, strcase.ToCamel(market))

	htmlTemplate, err := client.GetAsset(ctx, tpl.AssetPath)
	if err != nil {
		logger.Error("fragment template not found", "fragment", tpl.Name, "asset", tpl.AssetPath, "error", err)
		return FragmentResult{Name: tpl.Name, Err: fmt.Errorf("template not found: %s: %w", tpl.AssetPath, err)}
	}

	if !client.FolderExists(ctx, marketFolder) {
		folderTitle := marketFolder[strings.LastIndex(marketFolder, "/")+1:]
		if err := client.CreateFolder(ctx, marketFolder, strcase.ToCamel(folderTitle)); err != nil {
			logger.Error("failed to create fragment folder", "folder", marketFolder, "error", err)
			return FragmentResult{Name: tpl.Name, Err: err}
		}
	}

	if err := client.WritePage(ctx, fragmentPath, fragmentProps(tpl.Name, title, htmlTemplate)); err != nil {
		logger.Error("failed to create experience fragment", "fragment", tpl.Name, "error", err)
		return FragmentResult{Name: tpl.Name, Err: err}
	}

	logger.Info("created experience fragment", "fragment", tpl.Name, "path", fragmentPath)
	return FragmentResult{Name: tpl.Name, Success: true, Path: fragmentPath, Title: title}
}

// fragmentProps builds the JCR property map for an experience fragment page:
// a cq:Page with a master variation holding one rich-text component carrying
// the template HTML.
func fragmentProps(name, title, htmlContent string) map[string]any {
	componentBase := "jcr:content/data/master/root/" + name

	return map[string]any{
		"jcr:primaryType":                   "cq:Page",
		"jcr:content/jcr:primaryType":       "cq:PageContent",
		"jcr:content/sling:resourceType":    "cq/experience-fragments/editor/components/experiencefragment",
		"jcr:content/jcr:title":             title,
		"jcr:content/cq:template":           "/conf/global/settings/wcm/templates/experience-fragment-web-variation",
		"jcr:content/cq:cloudserviceconfigs": []string{"/etc/cloudservices/contexthub"},

		"jcr:content/data/jcr:primaryType":           "nt:unstructured",
		"jcr:content/data/master/jcr:primaryType":    "nt:unstructured",
		"jcr:content/data/master/sling:resourceType": "cq/experience-fragments/editor/components/experiencefragment/master",
		"jcr:content/data/master/jcr:title":          title + " Master",

		"jcr:content/data/master/root/jcr:primaryType":    "nt:unstructured",
		"jcr:content/data/master/root/sling:resourceType": "wcm/foundation/components/responsivegrid",

		componentBase + "/jcr:primaryType":    "nt:unstructured",
		componentBase + "/sling:resourceType": "core/wcm/components/text/v2/text",
		componentBase + "/text":               htmlContent,
		componentBase + "/textIsRich":         true,
	}
}
