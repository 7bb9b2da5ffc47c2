package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facepay/flowgate/capture"
	"github.com/stretchr/testify/require"
)

func TestCheckIdentity(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice", body["username"])
		exists := r.URL.Path == "/check_family_username/"
		json.NewEncoder(w).Encode(map[string]any{"exists": exists})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	identity, err := gw.CheckIdentity(context.Background(), "alice", SCOPE_ANY)
	require.NoError(t, err)
	require.True(t, identity.Exists)
	require.Equal(t, "family", identity.Kind)
	// primary is checked first, family only after a miss
	require.Equal(t, []string{"/check_username/", "/check_family_username/"}, paths)
}

func TestCheckIdentityNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"exists": false})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	identity, err := gw.CheckIdentity(context.Background(), "ghost", SCOPE_ANY)
	require.NoError(t, err)
	require.False(t, identity.Exists)
}

func TestVerifyFaceSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/face_verification/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "alice", r.FormValue("username"))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "face.jpg", header.Filename)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	image := &capture.Image{Data: []byte("jpeg"), Mime: "image/jpeg", Name: "face.jpg"}
	out, err := gw.VerifyFace(context.Background(), VERIFY_TRANSACTION, map[string]any{"username": "alice"}, image)
	require.NoError(t, err)
	require.Equal(t, true, out["success"])
}

func TestVerifyFaceRoutesLoginByKind(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"redirect": "home"})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	image := &capture.Image{Data: []byte("jpeg"), Name: "face.jpg"}

	_, err := gw.VerifyFace(context.Background(), VERIFY_LOGIN, map[string]any{"username": "alice", "kind": "primary"}, image)
	require.NoError(t, err)
	require.Equal(t, "/login/", path)

	_, err = gw.VerifyFace(context.Background(), VERIFY_LOGIN, map[string]any{"username": "junior", "kind": "family"}, image)
	require.NoError(t, err)
	require.Equal(t, "/family_login/", path)
}

func TestDomainRejectionCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "face does not match"})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	_, err := gw.VerifyFace(context.Background(), VERIFY_TRANSACTION, map[string]any{}, &capture.Image{Name: "f.jpg"})
	var domainErr DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "face does not match", domainErr.Message)
}

func TestErrorStatusIsDomainRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "family member limit reached"})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	_, err := gw.SubmitStep(context.Background(), "mobile_register_family", map[string]any{}, nil)
	var domainErr DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "family member limit reached", domainErr.Message)
}

func TestServerErrorIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	_, err := gw.SubmitStep(context.Background(), "initiate_transaction", map[string]any{}, nil)
	var transportErr TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestUnreachableBackendIsTransportFailure(t *testing.T) {
	gw := NewHttpGateway(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := gw.CheckIdentity(context.Background(), "alice", SCOPE_PRIMARY)
	var transportErr TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestFamilyRegisterPathOverride(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"message": "success"})
	}))
	defer server.Close()

	gw := NewHttpGateway(Config{BaseURL: server.URL})
	_, err := gw.SubmitStep(context.Background(), "mobile_register_family", map[string]any{}, nil)
	require.NoError(t, err)
	require.Equal(t, "/api/mobile_register_family/", path)

	gw = NewHttpGateway(Config{BaseURL: server.URL, FamilyRegisterPath: "/register_family/"})
	_, err = gw.SubmitStep(context.Background(), "mobile_register_family", map[string]any{}, nil)
	require.NoError(t, err)
	require.Equal(t, "/register_family/", path)
}
