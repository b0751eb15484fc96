// Package devserver is an in-memory stand-in for the remote auth
// service: the same /auth contract the production backend speaks, plus a
// websocket hub relaying capture progress to dashboards. Use it for
// local development and end-to-end testing of the capture pipeline.
package devserver

import (
	"bytes"
	"encoding/base64"
	"image/jpeg"
	"math/rand"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/facegate/go-facegate/internal/config"
	"github.com/facegate/go-facegate/internal/log"
	"github.com/facegate/go-facegate/pkg/capture"
	"github.com/facegate/go-facegate/pkg/hub"
)

// Risk thresholds per purpose; the weakest pose similarity is compared
// against these.
const (
	passLogin   = 0.80
	stepUpLogin = 0.70

	passPayment   = 0.83
	stepUpPayment = 0.78
)

// Server is the mock auth backend.
type Server struct {
	app   *fiber.App
	store *Store
	hub   *hub.Hub

	// mockSim is the similarity every decodable frame scores.
	// FACEGATE_MOCK_SIM steers it to exercise step-up/deny paths.
	mockSim float64
}

// New creates the server with its routes registered.
func New() *Server {
	s := &Server{
		app:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		store:   NewStore(),
		hub:     hub.New("progress"),
		mockSim: config.EnvFloat("FACEGATE_MOCK_SIM", 0.9),
	}
	s.routes()
	return s
}

// Listen starts the hub loop and serves on the given address.
func (s *Server) Listen(addr string) error {
	go s.hub.Run()
	log.Info("devserver listening", "addr", addr)
	return s.app.Listen(addr)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Post("/auth/register", s.handleRegister)
	s.app.Post("/auth/verify/start", s.handleVerifyStart)
	s.app.Post("/auth/verify/submit", s.handleVerifySubmit)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/progress", websocket.New(func(c *websocket.Conn) {
		hub.NewClient(s.hub, c).Run()
	}))
	s.app.Get("/ws/publish", websocket.New(func(c *websocket.Conn) {
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			s.hub.Broadcast(hub.NewJSONMessage(data))
		}
	}))
}

type registerReq struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Phone    *string           `json:"phone"`
	Images   map[string]string `json:"images"`
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid request body")
	}

	required := []string{"front", "left", "right"}
	if len(req.Images) != len(required) {
		return detail(c, fiber.StatusBadRequest, "images must contain front, left, right")
	}
	for _, pose := range required {
		img, ok := req.Images[pose]
		if !ok {
			return detail(c, fiber.StatusBadRequest, "images must contain front, left, right")
		}
		if !livenessOK(img) {
			return detail(c, fiber.StatusBadRequest, "LivenessFailed:"+pose)
		}
	}

	u := s.store.CreateUser(req.Email, req.Phone, req.Images)
	log.Info("user enrolled", "user_id", u.ID)

	return c.JSON(fiber.Map{"status": "Registered", "userId": u.ID})
}

type verifyStartReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserID   string `json:"userId"`
	Purpose  string `json:"purpose"`
}

func (s *Server) handleVerifyStart(c *fiber.Ctx) error {
	var req verifyStartReq
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid request body")
	}

	u, ok := s.store.User(req.UserID, req.Email)
	if !ok {
		return detail(c, fiber.StatusNotFound, "UserNotEnrolled")
	}

	poses := capture.EnrollSequence()
	rand.Shuffle(len(poses), func(i, j int) {
		poses[i], poses[j] = poses[j], poses[i]
	})

	ch := s.store.CreateChallenge(u.ID, poses, req.Purpose)

	return c.JSON(fiber.Map{
		"challengeId": ch.ID,
		"purpose":     ch.Purpose,
		"sequence":    ch.Sequence,
		"userId":      u.ID,
	})
}

type verifySubmitReq struct {
	ChallengeID string `json:"challengeId"`
	Frames      []struct {
		Pose        string `json:"pose"`
		ImageBase64 string `json:"imageBase64"`
	} `json:"frames"`
}

func (s *Server) handleVerifySubmit(c *fiber.Ctx) error {
	var req verifySubmitReq
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid request body")
	}

	ch, ok := s.store.TakeChallenge(req.ChallengeID)
	if !ok {
		return detail(c, fiber.StatusBadRequest, "InvalidChallenge")
	}

	if len(req.Frames) != len(ch.Sequence) {
		return detail(c, fiber.StatusBadRequest, "FramesNotMatchSequence")
	}

	simMin := 1.0
	for i, expected := range ch.Sequence {
		frame := req.Frames[i]
		if frame.Pose != string(expected) {
			return detail(c, fiber.StatusBadRequest, "WrongPoseOrder:"+string(expected))
		}
		if !livenessOK(frame.ImageBase64) {
			return detail(c, fiber.StatusBadRequest, "NoFaceDetected")
		}
		if s.mockSim < simMin {
			simMin = s.mockSim
		}
	}

	switch decide(simMin, ch.Purpose) {
	case "ALLOW":
		return c.JSON(fiber.Map{
			"purpose":        ch.Purpose,
			"token":          uuid.NewString(),
			"similarity_min": simMin,
		})
	case "STEP_UP":
		return c.JSON(fiber.Map{
			"purpose":        ch.Purpose,
			"stepUp":         "OTP_REQUIRED",
			"similarity_min": simMin,
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": fiber.Map{"error": "VerifyFailed", "similarity_min": simMin},
		})
	}
}

// decide maps the weakest pose similarity to an outcome per purpose.
func decide(sim float64, purpose string) string {
	if purpose == "PAYMENT" {
		switch {
		case sim >= passPayment:
			return "ALLOW"
		case sim >= stepUpPayment:
			return "STEP_UP"
		default:
			return "DENY"
		}
	}
	switch {
	case sim >= passLogin:
		return "ALLOW"
	case sim >= stepUpLogin:
		return "STEP_UP"
	default:
		return "DENY"
	}
}

// livenessOK is the dev stand-in for the PAD check: the payload must be
// valid base64 holding a decodable JPEG.
func livenessOK(b64 string) bool {
	if b64 == "" {
		return false
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return false
	}
	_, err = jpeg.Decode(bytes.NewReader(data))
	return err == nil
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}
