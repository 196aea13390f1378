package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopdesk/backend/internal/domain/identity"
)

const maxProfileResponseSize = 1 << 20

var (
	ErrProfileNotFound    = errors.New("identity provider: user not found")
	ErrProviderRequest    = errors.New("identity provider: request failed")
	ErrProviderBadPayload = errors.New("identity provider: malformed profile")
)

// ProfileClientConfig configures the provider backend API client
type ProfileClientConfig struct {
	APIURL    string
	SecretKey string
	Timeout   time.Duration
}

// ProfileClient fetches user profiles from the provider backend API.
// It holds no per-request state and is safe for concurrent use.
type ProfileClient struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
}

// NewProfileClient creates a new ProfileClient
func NewProfileClient(cfg ProfileClientConfig) (*ProfileClient, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("%w: provider api url is required", ErrVerifierMisconfigure)
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: provider secret key is required", ErrVerifierMisconfigure)
	}
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse provider api url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ProfileClient{
		baseURL:   base,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userPayload struct {
	ID                    string         `json:"id"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	PublicMetadata        map[string]any `json:"public_metadata"`
}

// FetchProfile loads the user identified by subjectID.
// The primary email address, when flagged, is returned first.
func (c *ProfileClient) FetchProfile(ctx context.Context, subjectID string) (*identity.Profile, error) {
	if subjectID == "" || strings.ContainsAny(subjectID, "/?#") {
		return nil, fmt.Errorf("%w: invalid subject id %q", ErrProviderRequest, subjectID)
	}
	endpoint := c.baseURL.JoinPath("users", subjectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProviderRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProfileNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: HTTP %d", ErrProviderRequest, resp.StatusCode)
	}

	var payload userPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderBadPayload, err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrProviderBadPayload)
	}

	return &identity.Profile{
		SubjectID:      payload.ID,
		EmailAddresses: orderEmails(payload.EmailAddresses, payload.PrimaryEmailAddressID),
		PublicMetadata: payload.PublicMetadata,
	}, nil
}

func orderEmails(addresses []emailAddress, primaryID string) []string {
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a.ID == primaryID && a.EmailAddress != "" {
			out = append(out, a.EmailAddress)
		}
	}
	for _, a := range addresses {
		if a.ID != primaryID && a.EmailAddress != "" {
			out = append(out, a.EmailAddress)
		}
	}
	return out
}

var _ identity.ProfileFetcher = (*ProfileClient)(nil)
