package authclient

import "github.com/facegate/go-facegate/pkg/capture"

// RegisterRequest enrolls a user with one ROI crop per pose.
// Images keys are the pose names: front, left, right.
type RegisterRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Phone    *string           `json:"phone"`
	Images   map[string]string `json:"images"`
}

// RegisterResponse is returned on successful enrollment.
type RegisterResponse struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
}

// Purpose is the caller-selected reason for a verification.
type Purpose string

const (
	PurposeLogin   Purpose = "LOGIN"
	PurposePayment Purpose = "PAYMENT"
)

// StartRequest opens a verification challenge.
type StartRequest struct {
	Email    string  `json:"email,omitempty"`
	Password string  `json:"password,omitempty"`
	UserID   string  `json:"userId,omitempty"`
	Purpose  Purpose `json:"purpose"`
}

// Challenge is the server-issued verification challenge with the pose
// sequence the user must perform, in order.
type Challenge struct {
	ChallengeID string         `json:"challengeId"`
	Purpose     Purpose        `json:"purpose"`
	Sequence    []capture.Pose `json:"sequence"`
	UserID      string         `json:"userId,omitempty"`
}

// SubmitRequest carries the captured frames for a challenge.
type SubmitRequest struct {
	ChallengeID string                `json:"challengeId"`
	Frames      []capture.PoseCapture `json:"frames"`
}

// Outcome is the terminal result of a verification submission.
type Outcome string

const (
	// OutcomeAllow means verification succeeded and a token was issued.
	OutcomeAllow Outcome = "ALLOW"

	// OutcomeStepUp means a secondary challenge (OTP) is required.
	OutcomeStepUp Outcome = "STEP_UP"

	// OutcomeDeny means verification failed.
	OutcomeDeny Outcome = "DENY"
)

// VerifyResult interprets the submission response.
type VerifyResult struct {
	Outcome Outcome

	// Token is set when Outcome is OutcomeAllow.
	Token string

	// NoFace is set on denial when the service reported no detectable
	// face; callers show distinct text for it.
	NoFace bool

	// Message is the user-facing explanation for non-allow outcomes.
	Message string
}

// submitResponse mirrors the service's success body shapes.
type submitResponse struct {
	Token  string `json:"token"`
	StepUp string `json:"stepUp"`
	Detail string `json:"detail"`
}

const stepUpOTP = "OTP_REQUIRED"
