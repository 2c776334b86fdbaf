package aem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Client is an authenticated session against a single AEM author instance.
//
// A Client is created per inbound request: the CSRF token is fetched once at
// construction and reused for every write issued through the session, and
// Close releases the underlying connections when the request is done. Clients
// are not shared across requests.
type Client struct {
	config    *Config
	client    *http.Client
	logger    hclog.Logger
	csrfToken string
}

// NewClient creates an AEM client and attempts to fetch a CSRF token from the
// instance. Token fetch failure is degraded but non-fatal: writes fall back
// to the X-Requested-With header AEM accepts from service users.
func NewClient(ctx context.Context, cfg *Config, logger hclog.Logger) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.AssetsRoot == "" {
		cfg.AssetsRoot = DefaultConfig().AssetsRoot
	}
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = DefaultConfig().TLSVerify
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AEM config: %w", err)
	}

	c := &Client{
		config: cfg,
		client: cfg.NewHTTPClient(),
		logger: logger,
	}

	if err := c.fetchCSRFToken(ctx); err != nil {
		logger.Warn("failed to fetch CSRF token, falling back to X-Requested-With header",
			"error", err)
	}

	return c, nil
}

// Close releases the session's idle connections. Call exactly once per
// NewClient, on every exit path.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// fetchCSRFToken retrieves a security token from AEM's well-known endpoint.
func (c *Client) fetchCSRFToken(ctx context.Context) error {
	endpoint := c.config.Host + "/libs/granite/csrf/token.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokenData struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenData); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	c.csrfToken = tokenData.Token
	c.logger.Debug("fetched CSRF token from AEM")
	return nil
}

// setCommonHeaders applies basic auth and the Referer header AEM requires
// for POST operations.
func (c *Client) setCommonHeaders(req *http.Request) {
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Referer", c.config.Host)
}

// setSecurityHeaders attaches the CSRF token when the session holds one, and
// the X-Requested-With fallback otherwise.
func (c *Client) setSecurityHeaders(req *http.Request) {
	if c.csrfToken != "" {
		req.Header.Set("CSRF-Token", c.csrfToken)
	} else {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
}

// GetPage retrieves the full JCR tree for a page using AEM's deep-expansion
// selector.
func (c *Client) GetPage(ctx context.Context, pagePath string) (map[string]any, error) {
	endpoint := c.config.Host + pagePath + ".infinity.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ReadError{Path: pagePath, Err: err}
	}
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ReadError{Path: pagePath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ReadError{Path: pagePath, StatusCode: resp.StatusCode}
	}

	var content map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, &ReadError{Path: pagePath, Err: fmt.Errorf("failed to decode JCR content: %w", err)}
	}

	c.logger.Info("retrieved page content", "path", pagePath)
	return content, nil
}

// ListPages retrieves the complete JCR subtree under a site path, including
// all child pages and nodes.
func (c *Client) ListPages(ctx context.Context, sitePath string) (map[string]any, error) {
	return c.GetPage(ctx, sitePath)
}

// WritePage issues a form-encoded Sling POST updating the properties of a
// content node. A 200 or 201 response is success; any other status is
// reported as a WriteError carrying the response body as diagnostic detail.
func (c *Client) WritePage(ctx context.Context, pagePath string, props map[string]any) error {
	form := encodeProps(props)
	form.Set("_charset_", "utf-8")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.Host+pagePath, strings.NewReader(form.Encode()))
	if err != nil {
		return &WriteError{Path: pagePath, Err: err}
	}
	c.setCommonHeaders(req)
	c.setSecurityHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return &WriteError{Path: pagePath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		c.logger.Info("updated page content", "path", pagePath)
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return &WriteError{Path: pagePath, StatusCode: resp.StatusCode, Detail: string(body)}
}

// TestConnection probes a known AEM login surface and reports reachability.
// Every error is downgraded to false.
func (c *Client) TestConnection(ctx context.Context) bool {
	endpoint := c.config.Host + "/libs/granite/core/content/login.html"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("AEM connection test failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// GetAsset retrieves the raw content of a DAM asset. The asset path is
// resolved under the configured assets root.
func (c *Client) GetAsset(ctx context.Context, assetPath string) (string, error) {
	endpoint := c.config.Host + c.config.AssetsRoot + assetPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &ReadError{Path: assetPath, Err: err}
	}
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ReadError{Path: assetPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ReadError{Path: assetPath, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ReadError{Path: assetPath, Err: err}
	}

	return string(body), nil
}

// FolderExists reports whether a repository folder responds to a GET. Any
// error is treated as "does not exist".
func (c *Client) FolderExists(ctx context.Context, folderPath string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Host+folderPath, nil)
	if err != nil {
		return false
	}
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("error checking folder existence", "path", folderPath, "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// CreateFolder creates a single sling:Folder node with a display title.
func (c *Client) CreateFolder(ctx context.Context, folderPath, title string) error {
	return c.WritePage(ctx, folderPath, map[string]any{
		"jcr:primaryType": "sling:Folder",
		"jcr:title":       title,
	})
}

// DuplicatePageTemplate copies an entire page structure to a new location
// using AEM's copy operation, then updates the new page's title and any
// additional jcr:content properties.
//
// The copy is processed asynchronously on the AEM side: a 2xx response means
// the copy was accepted, not that it has completed. The follow-up property
// update may race an in-flight copy; this mirrors AEM's documented behavior
// and is not strengthened here.
func (c *Client) DuplicatePageTemplate(ctx context.Context, sourcePath, destParentPath, newPageName, newPageTitle string, additionalProps map[string]any) (string, error) {
	newPagePath := destParentPath + "/" + newPageName

	c.logger.Info("duplicating page template",
		"source", sourcePath, "destination", newPagePath)

	form := url.Values{}
	form.Set(":operation", "copy")
	form.Set(":dest", newPagePath)
	form.Set(":async", "true")
	form.Set("_charset_", "utf-8")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.Host+sourcePath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &WriteError{Path: sourcePath, Err: err}
	}
	c.setCommonHeaders(req)
	c.setSecurityHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &WriteError{Path: sourcePath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &WriteError{Path: sourcePath, StatusCode: resp.StatusCode, Detail: string(body)}
	}

	updateProps := map[string]any{
		"jcr:content/jcr:title": newPageTitle,
	}
	for key, value := range additionalProps {
		propKey := key
		if !strings.HasPrefix(propKey, "jcr:content/") {
			propKey = "jcr:content/" + propKey
		}
		updateProps[propKey] = value
	}

	if err := c.WritePage(ctx, newPagePath, updateProps); err != nil {
		return "", err
	}

	c.logger.Info("duplicated page template", "path", newPagePath)
	return newPagePath, nil
}

// UploadAsset uploads a binary asset into the DAM using AEM's createasset
// endpoint with a multipart form.
func (c *Client) UploadAsset(ctx context.Context, damPath, filename, contentType string, data []byte) error {
	endpoint := c.config.Host + damPath + ".createasset.html"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("_charset_", "utf-8"); err != nil {
		return &WriteError{Path: damPath, Err: err}
	}

	part, err := filePart(writer, filename, contentType)
	if err != nil {
		return &WriteError{Path: damPath, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return &WriteError{Path: damPath, Err: err}
	}
	if err := writer.Close(); err != nil {
		return &WriteError{Path: damPath, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return &WriteError{Path: damPath, Err: err}
	}
	c.setCommonHeaders(req)
	c.setSecurityHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return &WriteError{Path: damPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		c.logger.Info("uploaded asset", "path", damPath, "filename", filename)
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return &WriteError{Path: damPath, StatusCode: resp.StatusCode, Detail: string(body)}
}

// AssetsRoot returns the configured DAM root path.
func (c *Client) AssetsRoot() string {
	return c.config.AssetsRoot
}

// filePart creates a multipart file part carrying an explicit content type.
// The standard CreateFormFile helper hardcodes application/octet-stream,
// which makes AEM skip rendition generation for images.
func filePart(writer *multipart.Writer, filename, contentType string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return writer.CreatePart(header)
}

// encodeProps converts a JCR property map into form values. Slice values
// become repeated parameters, which Sling interprets as multi-valued
// properties.
func encodeProps(props map[string]any) url.Values {
	form := url.Values{}
	for key, value := range props {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				form.Add(key, item)
			}
		case []any:
			for _, item := range v {
				form.Add(key, fmt.Sprint(item))
			}
		default:
			form.Set(key, fmt.Sprint(v))
		}
	}
	return form
}
