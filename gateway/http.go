package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/facepay/flowgate/capture"
	"github.com/facepay/flowgate/logger"
	"go.uber.org/zap"
)

const defaultFamilyRegisterPath = "/api/mobile_register_family/"

type Config struct {
	BaseURL            string
	FamilyRegisterPath string
	Timeout            time.Duration
}

type httpGateway struct {
	conf   Config
	client *http.Client
}

var _ Gateway = new(httpGateway)

func NewHttpGateway(conf Config) *httpGateway {
	if conf.FamilyRegisterPath == "" {
		conf.FamilyRegisterPath = defaultFamilyRegisterPath
	}
	if conf.Timeout == 0 {
		conf.Timeout = 15 * time.Second
	}
	conf.BaseURL = strings.TrimSuffix(conf.BaseURL, "/")
	return &httpGateway{
		conf:   conf,
		client: &http.Client{Timeout: conf.Timeout},
	}
}

func (g *httpGateway) CheckIdentity(ctx context.Context, identifier string, scope IdentityScope) (*Identity, error) {
	switch scope {
	case SCOPE_PRIMARY:
		return g.checkOne(ctx, "/check_username/", identifier, string(SCOPE_PRIMARY))
	case SCOPE_FAMILY:
		return g.checkOne(ctx, "/check_family_username/", identifier, string(SCOPE_FAMILY))
	default:
		identity, err := g.checkOne(ctx, "/check_username/", identifier, string(SCOPE_PRIMARY))
		if err != nil {
			return nil, err
		}
		if identity.Exists {
			return identity, nil
		}
		return g.checkOne(ctx, "/check_family_username/", identifier, string(SCOPE_FAMILY))
	}
}

func (g *httpGateway) checkOne(ctx context.Context, path string, identifier string, kind string) (*Identity, error) {
	body, err := g.postJson(ctx, path, map[string]any{"username": identifier})
	if err != nil {
		return nil, err
	}
	exists, _ := body["exists"].(bool)
	identity := &Identity{Exists: exists}
	if exists {
		identity.Kind = kind
	}
	return identity, nil
}

func (g *httpGateway) VerifyFace(ctx context.Context, kind VerifyKind, fields map[string]any, image *capture.Image) (map[string]any, error) {
	var path string
	switch kind {
	case VERIFY_LOGIN:
		if fmt.Sprintf("%v", fields["kind"]) == string(SCOPE_FAMILY) {
			path = "/family_login/"
		} else {
			path = "/login/"
		}
	default:
		path = "/face_verification/"
	}
	body, err := g.postMultipart(ctx, path, fields, image)
	if err != nil {
		return nil, err
	}
	if err := rejectionOf(body); err != nil {
		return nil, err
	}
	return body, nil
}

func (g *httpGateway) SubmitStep(ctx context.Context, step string, fields map[string]any, image *capture.Image) (map[string]any, error) {
	var path string
	switch step {
	case "mobile_register_family":
		path = g.conf.FamilyRegisterPath
	default:
		path = "/" + step + "/"
	}
	body, err := g.postMultipart(ctx, path, fields, image)
	if err != nil {
		return nil, err
	}
	if err := rejectionOf(body); err != nil {
		return nil, err
	}
	return body, nil
}

// rejectionOf reads a 2xx body for an explicit semantic decline.
func rejectionOf(body map[string]any) error {
	if success, ok := body["success"].(bool); ok && !success {
		return DomainError{Message: messageOf(body), Raw: rawOf(body)}
	}
	return nil
}

func (g *httpGateway) postJson(ctx context.Context, path string, payload map[string]any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.conf.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return g.do(req)
}

func (g *httpGateway) postMultipart(ctx context.Context, path string, fields map[string]any, image *capture.Image) (map[string]any, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, fmt.Sprintf("%v", v)); err != nil {
			return nil, err
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", image.Name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.conf.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return g.do(req)
}

func (g *httpGateway) do(req *http.Request) (map[string]any, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error("backend call failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, TransportError{Cause: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError{Cause: err}
	}
	var body map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil && resp.StatusCode < 300 {
			return nil, TransportError{Cause: fmt.Errorf("malformed backend response: %w", err)}
		}
	}
	if resp.StatusCode >= 500 {
		return nil, TransportError{Cause: fmt.Errorf("backend returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 300 {
		return nil, DomainError{Message: messageOf(body), Raw: string(raw)}
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func messageOf(body map[string]any) string {
	if body == nil {
		return ""
	}
	if msg, ok := body["message"].(string); ok {
		return msg
	}
	if msg, ok := body["error"].(string); ok {
		return msg
	}
	return ""
}

func rawOf(body map[string]any) string {
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(data)
}
