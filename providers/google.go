package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var ErrInvalidIDToken = errors.New("invalid google id token")

// GoogleVerifier checks ID tokens with Google's tokeninfo endpoint.
type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, endpoint: googleTokenInfoURL, httpClient: newHTTPClient()}
}

// WithEndpoint points the verifier at another tokeninfo URL.
func (v *GoogleVerifier) WithEndpoint(endpoint string) *GoogleVerifier {
	v.endpoint = endpoint
	return v
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}

	var info tokenInfo
	u := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	if err := doRequest(ctx, v.httpClient, "google", http.MethodGet, u, nil, &info, nil); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return nil, ErrInvalidIDToken
		}
		return nil, fmt.Errorf("google tokeninfo: %w", err)
	}

	if v.clientID != "" && info.Aud != v.clientID {
		return nil, ErrInvalidIDToken
	}
	if info.EmailVerified != "true" || info.Email == "" {
		return nil, ErrInvalidIDToken
	}
	return &Identity{Subject: info.Sub, Email: info.Email, Name: info.Name}, nil
}
