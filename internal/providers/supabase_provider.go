package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/models/dtos"

	"golang.org/x/time/rate"
)

// SupabaseProvider talks to Supabase Auth (/auth/v1) and PostgREST (/rest/v1).
type SupabaseProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Tokens  TokenSource

	limiter *rate.Limiter
	metrics *metrics.MetricsRegistry
	now     func() time.Time

	// pkceVerifier belongs to the single OAuth flow in progress.
	pkceMu       sync.Mutex
	pkceVerifier string
}

var (
	_ AuthProvider = (*SupabaseProvider)(nil)
	_ DataProvider = (*SupabaseProvider)(nil)
)

func NewSupabaseProvider(baseURL, apiKey string, tokens TokenSource, rps float64, burst int, metricsReg *metrics.MetricsRegistry) *SupabaseProvider {
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	return &SupabaseProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: constants.DefaultHTTPTimeout},
		Tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: metricsReg,
		now:     time.Now,
	}
}

// GetProviderType returns the provider type identifier
func (p *SupabaseProvider) GetProviderType() string {
	return "supabase"
}

type requestOptions struct {
	bearer string
	prefer string
}

type requestOption func(*requestOptions)

func withBearer(token string) requestOption {
	return func(o *requestOptions) { o.bearer = token }
}

func withPrefer(prefer string) requestOption {
	return func(o *requestOptions) { o.prefer = prefer }
}

func (p *SupabaseProvider) sessionToken() string {
	if p.Tokens == nil {
		return ""
	}
	return p.Tokens()
}

// requireSession returns the bearer for a data call, failing when signed out.
func (p *SupabaseProvider) requireSession() (string, error) {
	token := p.sessionToken()
	if token == "" {
		return "", newProviderError(constants.ErrCodeNotAuthenticated, "", nil)
	}
	return token, nil
}

// do performs one JSON request. payload and result may be nil.
func (p *SupabaseProvider) do(ctx context.Context, operation, method, endpoint string, query url.Values, payload, result interface{}, opts ...requestOption) (status int, err error) {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		p.metrics.ProviderRequestsTotal.WithLabelValues(operation, outcome).Inc()
		p.metrics.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	if p.APIKey == "" {
		return 0, newProviderError(constants.ErrCodeInvalidAPIKey, "SUPABASE_ANON_KEY is not set", nil)
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, newProviderError(constants.ErrCodeRateLimited, "", err)
		}
	}

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return 0, newProviderError(constants.ErrCodeInvalidDataFormat, "Failed to marshal request body", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	target := p.BaseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, newProviderError(constants.ErrCodeNetworkError, "Failed to create request", err)
	}

	bearer := options.bearer
	if bearer == "" {
		bearer = p.APIKey
	}
	req.Header.Set("apikey", p.APIKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if options.prefer != "" {
		req.Header.Set("Prefer", options.prefer)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, newProviderError(constants.ErrCodeNetworkError, "", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, newProviderError(constants.ErrCodeNetworkError, "Failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := p.buildHTTPError(resp.StatusCode, endpoint, bodyBytes)
		logging.Debug("Backend request failed",
			"operation", operation,
			"status_code", resp.StatusCode,
			"code", perr.Code,
			"sql_state", perr.SQLState,
		)
		return resp.StatusCode, perr
	}

	if result == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Status:  resp.StatusCode,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Err:     err,
		}
	}

	return resp.StatusCode, nil
}

// buildHTTPError decodes GoTrue and PostgREST error bodies into a ProviderError.
func (p *SupabaseProvider) buildHTTPError(status int, endpoint string, body []byte) *ProviderError {
	perr := &ProviderError{
		Code:   codeForStatus(status),
		Status: status,
	}

	var remote dtos.RemoteError
	if err := json.Unmarshal(body, &remote); err == nil {
		perr.SQLState = remote.SQLState()
		perr.Message = remote.Text()
		if remote.Details != nil {
			perr.Details = *remote.Details
		}
		if remote.Hint != nil {
			perr.Hint = *remote.Hint
		}
		if perr.SQLState == constants.PgInsufficientPriv {
			perr.Code = constants.ErrCodePermissionDenied
		}
	}

	if perr.Message == "" {
		perr.Message = fmt.Sprintf("HTTP %d from %s", status, endpoint)
		perr.Details = string(body)
	}
	return perr
}

func eq(value string) string {
	return "eq." + value
}
