package content

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFragmentClient records calls and fails on demand per asset or page.
type fakeFragmentClient struct {
	assets         map[string]string
	existingFolder map[string]bool
	failWritePath  string

	createdFolders []string
	writtenPages   map[string]map[string]any
}

func newFakeFragmentClient() *fakeFragmentClient {
	assets := make(map[string]string)
	for _, tpl := range fragmentCatalog {
		assets[tpl.AssetPath] = "<div>" + tpl.Name + "</div>"
	}
	return &fakeFragmentClient{
		assets:         assets,
		existingFolder: make(map[string]bool),
		writtenPages:   make(map[string]map[string]any),
	}
}

func (f *fakeFragmentClient) GetAsset(_ context.Context, assetPath string) (string, error) {
	content, ok := f.assets[assetPath]
	if !ok {
		return "", errors.New("asset not found")
	}
	return content, nil
}

func (f *fakeFragmentClient) FolderExists(_ context.Context, folderPath string) bool {
	return f.existingFolder[folderPath]
}

func (f *fakeFragmentClient) CreateFolder(_ context.Context, folderPath, _ string) error {
	f.createdFolders = append(f.createdFolders, folderPath)
	f.existingFolder[folderPath] = true
	return nil
}

func (f *fakeFragmentClient) WritePage(_ context.Context, pagePath string, props map[string]any) error {
	if pagePath == f.failWritePath {
		return errors.New("write rejected")
	}
	f.writtenPages[pagePath] = props
	return nil
}

func TestCreateExperienceFragmentsAllSucceed(t *testing.T) {
	client := newFakeFragmentClient()
	log := hclog.NewNullLogger()

	result := CreateExperienceFragments(context.Background(), client, log,
		"new-zealand", "/content/experience-fragments")

	assert.True(t, result.Success)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 5, result.Successful)
	assert.Zero(t, result.Failed)

	// Market folder created exactly once, then reused.
	assert.Equal(t, []string{"/content/experience-fragments/new-zealand"}, client.createdFolders)

	header := client.writtenPages["/content/experience-fragments/new-zealand/header"]
	require.NotNil(t, header)
	assert.Equal(t, "cq:Page", header["jcr:primaryType"])
	assert.Equal(t, "Header - NewZealand", header["jcr:content/jcr:title"])
	assert.Equal(t, "<div>header</div>", header["jcr:content/data/master/root/header/text"])
}

func TestCreateExperienceFragmentsOneFailureDoesNotAbortOthers(t *testing.T) {
	client := newFakeFragmentClient()
	client.failWritePath = "/content/experience-fragments/spain/footer"
	log := hclog.NewNullLogger()

	result := CreateExperienceFragments(context.Background(), client, log,
		"spain", "/content/experience-fragments")

	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 5)

	for _, fr := range result.Results {
		if fr.Name == "footer" {
			assert.False(t, fr.Success)
			assert.Error(t, fr.Err)
		} else {
			assert.True(t, fr.Success)
		}
	}
}

func TestCreateExperienceFragmentsMissingTemplate(t *testing.T) {
	client := newFakeFragmentClient()
	delete(client.assets, "/commercial/mava-international/templates/profile.html")
	log := hclog.NewNullLogger()

	result := CreateExperienceFragments(context.Background(), client, log,
		"spain", "/content/experience-fragments")

	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Successful)

	// The missing template must not produce a page write.
	_, wrote := client.writtenPages["/content/experience-fragments/spain/profile"]
	assert.False(t, wrote)
}

func TestCreateExperienceFragmentsExistingFolderNotRecreated(t *testing.T) {
	client := newFakeFragmentClient()
	client.existingFolder["/content/experience-fragments/spain"] = true
	log := hclog.NewNullLogger()

	result := CreateExperienceFragments(context.Background(), client, log,
		"spain", "/content/experience-fragments")

	assert.True(t, result.Success)
	assert.Empty(t, client.createdFolders)
}
