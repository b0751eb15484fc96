// Package authclient wraps the remote enrollment/verification endpoints
// as an opaque request/response contract. It performs no retries: every
// failure surfaces as an error the caller reports to the user.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/facegate/go-facegate/internal/httpc"
	"github.com/facegate/go-facegate/internal/log"
	"github.com/facegate/go-facegate/pkg/capture"
)

// Client talks to the auth service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given service base URL, using the shared
// HTTP client defaults.
func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	return &Client{baseURL: baseURL, http: httpc.Client}, nil
}

// SetHTTPClient overrides the underlying HTTP client (tests, custom
// timeouts).
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Register enrolls a user from the captured pose crops.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.postJSON(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	log.Info("registered", "user_id", resp.UserID)
	return &resp, nil
}

// StartVerify opens a verification challenge and returns the pose
// sequence the user must perform.
func (c *Client) StartVerify(ctx context.Context, req *StartRequest) (*Challenge, error) {
	var ch Challenge
	if err := c.postJSON(ctx, "/auth/verify/start", req, &ch); err != nil {
		return nil, err
	}
	if ch.ChallengeID == "" || len(ch.Sequence) == 0 {
		return nil, fmt.Errorf("%w: challenge missing id or sequence", ErrBadResponse)
	}
	return &ch, nil
}

// SubmitVerify posts the captured frames for a challenge and interprets
// the three outcome shapes: token (allow), step-up marker, or failure.
func (c *Client) SubmitVerify(ctx context.Context, challengeID string, frames []capture.PoseCapture) (*VerifyResult, error) {
	req := SubmitRequest{ChallengeID: challengeID, Frames: frames}

	var resp submitResponse
	err := c.postJSON(ctx, "/auth/verify/submit", &req, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			// Business-logic denial still yields a structured result.
			res := &VerifyResult{Outcome: OutcomeDeny, Message: apiErr.Detail}
			if apiErr.IsNoFace() {
				res.NoFace = true
				res.Message = "No face detected. Center your face in the oval and try again."
			}
			return res, nil
		}
		return nil, err
	}

	switch {
	case resp.Token != "":
		return &VerifyResult{Outcome: OutcomeAllow, Token: resp.Token}, nil
	case resp.StepUp == stepUpOTP:
		return &VerifyResult{Outcome: OutcomeStepUp, Message: "Additional OTP verification required."}, nil
	case resp.Detail == detailNoFace:
		return &VerifyResult{
			Outcome: OutcomeDeny,
			NoFace:  true,
			Message: "No face detected. Center your face in the oval and try again.",
		}, nil
	default:
		return &VerifyResult{Outcome: OutcomeDeny, Message: "Verification failed."}, nil
	}
}

// postJSON posts a JSON body and decodes a JSON response. Non-2xx
// statuses become a *APIError with the detail extracted from the body.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("authclient: marshal %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("authclient: build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("authclient: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("authclient: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := extractDetail(raw, http.StatusText(resp.StatusCode))
		log.Warn("auth service rejected request", "path", path, "status", resp.StatusCode, "detail", detail)
		return &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrBadResponse, path, err)
		}
	}
	return nil
}
