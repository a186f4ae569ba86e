package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupack/packstore/pkg/packstore"
	"github.com/edupack/packstore/pkg/packstore/api"
)

func setupTestServer(t *testing.T) (*httptest.Server, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	storage, err := packstore.New("/data", packstore.WithFilesystem(fs))
	require.NoError(t, err)

	handler := api.NewStorageHandler(storage, nil)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return srv, fs
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSaveAndDeleteLibrary(t *testing.T) {
	srv, fs := setupTestServer(t)
	require.NoError(t, afero.WriteFile(fs, "/upload/library.json", []byte("{}"), 0o644))

	resp := doJSON(t, http.MethodPost, srv.URL+"/libraries", api.SaveLibraryRequest{
		Name:         "Quiz",
		MajorVersion: 1,
		MinorVersion: 4,
		SourceDir:    "/upload",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ok, _ := afero.Exists(fs, "/data/libraries/Quiz-1.4/library.json")
	assert.True(t, ok)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/libraries/Quiz/1/4", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	ok, _ = afero.Exists(fs, "/data/libraries/Quiz-1.4")
	assert.False(t, ok)
}

func TestSaveLibrary_BadSourceFails(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/libraries", api.SaveLibraryRequest{
		Name:         "Quiz",
		MajorVersion: 1,
		MinorVersion: 4,
		SourceDir:    "/no-such-upload",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestContentLifecycle(t *testing.T) {
	srv, fs := setupTestServer(t)
	require.NoError(t, afero.WriteFile(fs, "/tmp/content.json", []byte(`{"v":1}`), 0o644))

	resp := doJSON(t, http.MethodPost, srv.URL+"/content/42", api.SaveContentRequest{SourceDir: "/tmp"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/content/42/clone", api.CloneContentRequest{NewID: "43"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ok, _ := afero.Exists(fs, "/data/content/43/content.json")
	assert.True(t, ok)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/content/42", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	// The clone is unaffected by deleting the original.
	ok, _ = afero.Exists(fs, "/data/content/43/content.json")
	assert.True(t, ok)
}

func TestCachedAssetsEndpoints(t *testing.T) {
	srv, fs := setupTestServer(t)
	require.NoError(t, afero.WriteFile(fs, "/data/lib/a.js", []byte("var a = 1"), 0o644))

	// Miss before aggregation.
	miss, err := http.Get(srv.URL + "/cachedassets/fp1")
	require.NoError(t, err)
	miss.Body.Close()
	assert.Equal(t, http.StatusNotFound, miss.StatusCode)

	bundle := packstore.AssetBundle{Scripts: []packstore.Asset{{Path: "lib/a.js"}}}
	resp := doJSON(t, http.MethodPost, srv.URL+"/cachedassets/fp1", bundle)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cached api.CacheAssetsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cached))
	require.NotNil(t, cached.Set)
	assert.Equal(t, "cachedassets/fp1.js", cached.Set.Scripts.Path)
	require.Len(t, cached.Bundle.Scripts, 1)
	assert.Equal(t, cached.Set.Scripts, cached.Bundle.Scripts[0])

	// Hit after aggregation.
	hit, err := http.Get(srv.URL + "/cachedassets/fp1")
	require.NoError(t, err)
	defer hit.Body.Close()
	require.Equal(t, http.StatusOK, hit.StatusCode)

	var set packstore.CachedAssetSet
	require.NoError(t, json.NewDecoder(hit.Body).Decode(&set))
	assert.Equal(t, "fp1", set.Key)

	// Invalidate.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/cachedassets", api.DeleteCachedAssetsRequest{Keys: []string{"fp1"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	miss, err = http.Get(srv.URL + "/cachedassets/fp1")
	require.NoError(t, err)
	miss.Body.Close()
	assert.Equal(t, http.StatusNotFound, miss.StatusCode)
}

func TestExportsEndpoints(t *testing.T) {
	srv, fs := setupTestServer(t)
	require.NoError(t, afero.WriteFile(fs, "/tmp/pack.h5p", []byte("zip"), 0o644))

	resp := doJSON(t, http.MethodPost, srv.URL+"/exports", api.SaveExportRequest{
		SourceFile: "/tmp/pack.h5p",
		Filename:   "pack.h5p",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	has, err := http.Get(srv.URL + "/exports/pack.h5p")
	require.NoError(t, err)
	has.Body.Close()
	assert.Equal(t, http.StatusOK, has.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/exports/pack.h5p", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	gone, err := http.Get(srv.URL + "/exports/pack.h5p")
	require.NoError(t, err)
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestTempPathEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/temp-path")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["path"], "temp")
	assert.Contains(t, body["path"], "h5p-")
}

func TestInvalidVersionSegments(t *testing.T) {
	srv, _ := setupTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/libraries/Quiz/one/4", srv.URL), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
