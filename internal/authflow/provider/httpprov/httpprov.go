// Package httpprov is the REST client for the hosted credential service.
package httpprov

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

	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/circuit"
	"campusgate/pkg/platform/sentinel"
)

const defaultTimeout = 10 * time.Second

// Provider talks to the credential service over HTTP. All failures from the
// remote side surface as sentinel.ErrUnavailable so callers can keep the flow
// session alive and let the user retry. A circuit breaker skips the network
// round trip while the service is known to be down.
type Provider struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker

	probeMu   sync.Mutex
	lastProbe time.Time
}

func New(baseURL string) *Provider {
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		breaker: circuit.New("credential-provider", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
}

func (p *Provider) SendVerificationCode(ctx context.Context, email string, allowCreate bool) error {
	body := map[string]any{"email": email, "create_user": allowCreate}
	return p.do(ctx, http.MethodPost, "/otp", body, nil)
}

func (p *Provider) VerifyCode(ctx context.Context, email, code string) (id.PrincipalID, error) {
	body := map[string]any{"email": email, "token": code}
	var out struct {
		UserID string `json:"user_id"`
	}
	if err := p.do(ctx, http.MethodPost, "/verify", body, &out); err != nil {
		return id.PrincipalID{}, err
	}
	pid, err := id.ParsePrincipalID(out.UserID)
	if err != nil {
		return id.PrincipalID{}, fmt.Errorf("provider returned malformed user id: %w", sentinel.ErrUnavailable)
	}
	return pid, nil
}

func (p *Provider) UpdateCredential(ctx context.Context, pid id.PrincipalID, password string) error {
	body := map[string]any{"password": password}
	path := "/user/" + url.PathEscape(pid.String()) + "/password"
	return p.do(ctx, http.MethodPut, path, body, nil)
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (id.PrincipalID, error) {
	body := map[string]any{"email": email, "password": password}
	var out struct {
		UserID string `json:"user_id"`
	}
	if err := p.do(ctx, http.MethodPost, "/token", body, &out); err != nil {
		return id.PrincipalID{}, err
	}
	pid, err := id.ParsePrincipalID(out.UserID)
	if err != nil {
		return id.PrincipalID{}, fmt.Errorf("provider returned malformed user id: %w", sentinel.ErrUnavailable)
	}
	return pid, nil
}

// probeInterval is how often a single request is let through an open circuit
// to test whether the provider has recovered.
const probeInterval = 30 * time.Second

func (p *Provider) do(ctx context.Context, method, path string, body any, out any) error {
	if !p.allowAttempt() {
		return fmt.Errorf("credential provider circuit open: %w", sentinel.ErrUnavailable)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.breaker.RecordFailure()
		return fmt.Errorf("credential provider unreachable: %w", sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	// 4xx on /verify and /token means a bad code or password, which the
	// caller treats as retryable user error rather than an outage. The
	// provider answered, so the circuit counts it as a success.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		p.breaker.RecordSuccess()
		return sentinel.ErrInvalidState
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.breaker.RecordFailure()
		msg := readErrorMessage(resp.Body)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("credential provider error: %s: %w", msg, sentinel.ErrUnavailable)
	}
	p.breaker.RecordSuccess()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode provider response: %w", sentinel.ErrUnavailable)
		}
	}
	return nil
}

// allowAttempt lets every request through a closed circuit, and one probe per
// probeInterval through an open one.
func (p *Provider) allowAttempt() bool {
	if !p.breaker.IsOpen() {
		return true
	}
	p.probeMu.Lock()
	defer p.probeMu.Unlock()
	if time.Since(p.lastProbe) < probeInterval {
		return false
	}
	p.lastProbe = time.Now()
	return true
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return ""
}
