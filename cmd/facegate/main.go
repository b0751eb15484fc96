// facegate drives the camera through a guided pose sequence and submits
// the captured crops to the auth service for enrollment or verification.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/facegate/go-facegate/internal/config"
	"github.com/facegate/go-facegate/internal/log"
	"github.com/facegate/go-facegate/pkg/authclient"
	"github.com/facegate/go-facegate/pkg/camera"
	"github.com/facegate/go-facegate/pkg/capture"
	"github.com/facegate/go-facegate/pkg/debug"
	"github.com/facegate/go-facegate/pkg/hub"
	"github.com/facegate/go-facegate/pkg/session"
)

var app = cli.NewApp()

func init() {
	app.Name = "facegate"
	app.Usage = "Stability-gated face capture for enrollment and verification"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server",
			Usage: "auth service base URL",
			Value: config.ServerURL(config.DefaultServerURL),
		},
		cli.IntFlag{
			Name:  "device",
			Usage: "capture device id",
		},
		cli.StringFlag{
			Name:  "publish",
			Usage: "mirror progress events to a hub, e.g. ws://localhost:8080/ws/publish",
		},
		cli.BoolFlag{
			Name:  "debug-metrics",
			Usage: "log per-tick motion/sharpness values",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:    "enroll",
			Aliases: []string{"e"},
			Usage:   "Capture front/left/right poses and register",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "email", Usage: "account email"},
				cli.StringFlag{Name: "password", Usage: "account password"},
				cli.StringFlag{Name: "phone", Usage: "phone number (optional)"},
			},
			Action: runEnroll,
		},
		{
			Name:    "verify",
			Aliases: []string{"v"},
			Usage:   "Run a server-issued pose challenge and verify",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "email", Usage: "account email"},
				cli.StringFlag{Name: "password", Usage: "account password"},
				cli.StringFlag{Name: "purpose", Usage: "LOGIN or PAYMENT", Value: "LOGIN"},
			},
			Action: runVerify,
		},
	}
}

func main() {
	log.Init(config.LogLevel())
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup opens the camera and builds a sequencer with the configured
// sinks. The returned cleanup closes everything.
func setup(c *cli.Context) (*capture.Sequencer, func(), error) {
	debug.Metrics = c.GlobalBool("debug-metrics")

	camCfg := camera.DefaultConfig()
	camCfg.DeviceID = c.GlobalInt("device")

	cam, err := camera.Open(camCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("camera unavailable: %w", err)
	}
	cleanup := func() { cam.Close() }

	seq := capture.NewSequencer(cam, captureConfig())

	sinks := capture.MultiSink{newBarSink()}
	if url := c.GlobalString("publish"); url != "" {
		pub, err := hub.Dial(url)
		if err != nil {
			log.Warn("progress hub unreachable, continuing without", "err", err)
		} else {
			sinks = append(sinks, pub)
			prev := cleanup
			cleanup = func() { pub.Close(); prev() }
		}
	}
	seq.SetSink(sinks)

	return seq, cleanup, nil
}

// sessionStore resolves the persisted-session store, honoring the
// FACEGATE_DATA override.
func sessionStore() (*session.Store, error) {
	if dir := config.DataDir(); dir != "" {
		return session.NewStoreAt(dir), nil
	}
	return session.NewStore()
}

// captureConfig applies env overrides to the tuned defaults.
func captureConfig() capture.Config {
	cfg := capture.DefaultConfig()
	cfg.Dwell = config.EnvMillis("FACEGATE_DWELL_MS", cfg.Dwell)
	cfg.PoseTimeout = config.EnvMillis("FACEGATE_POSE_TIMEOUT_MS", cfg.PoseTimeout)
	cfg.MotionMax = config.EnvFloat("FACEGATE_MOTION_MAX", cfg.MotionMax)
	cfg.SharpMin = config.EnvFloat("FACEGATE_SHARP_MIN", cfg.SharpMin)
	return cfg
}

func runEnroll(c *cli.Context) error {
	client, err := authclient.New(c.GlobalString("server"))
	if err != nil {
		return err
	}

	seq, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Hold each pose inside the oval until the bar fills.")
	captures, err := seq.Run(context.Background(), capture.EnrollSequence())
	if err != nil {
		return fmt.Errorf("capture failed, please retry: %w", err)
	}

	images := make(map[string]string, len(captures))
	for _, pc := range captures {
		images[string(pc.Pose)] = pc.ImageBase64
	}

	var phone *string
	if p := c.String("phone"); p != "" {
		phone = &p
	}

	resp, err := client.Register(context.Background(), &authclient.RegisterRequest{
		Email:    c.String("email"),
		Password: c.String("password"),
		Phone:    phone,
		Images:   images,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if store, err := sessionStore(); err == nil {
		if err := store.Save(resp.UserID); err != nil {
			log.Warn("could not persist user id", "err", err)
		}
	}

	fmt.Printf("Registered. User id: %s\n", resp.UserID)
	return nil
}

func runVerify(c *cli.Context) error {
	client, err := authclient.New(c.GlobalString("server"))
	if err != nil {
		return err
	}

	// The persisted id from a previous enrollment, when present.
	var userID string
	if store, err := sessionStore(); err == nil {
		userID, _ = store.Load()
	}

	ch, err := client.StartVerify(context.Background(), &authclient.StartRequest{
		Email:    c.String("email"),
		Password: c.String("password"),
		UserID:   userID,
		Purpose:  authclient.Purpose(c.String("purpose")),
	})
	if err != nil {
		return fmt.Errorf("could not start verification: %w", err)
	}

	seq, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Follow the pose instructions until each bar fills.")
	captures, err := seq.Run(context.Background(), ch.Sequence)
	if err != nil {
		return fmt.Errorf("capture failed, please retry: %w", err)
	}

	result, err := client.SubmitVerify(context.Background(), ch.ChallengeID, captures)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	switch result.Outcome {
	case authclient.OutcomeAllow:
		fmt.Println("ALLOW - verification succeeded")
		fmt.Printf("Token: %s\n", result.Token)
	case authclient.OutcomeStepUp:
		fmt.Println("STEP_UP -", result.Message)
	default:
		fmt.Println("DENY -", result.Message)
	}
	return nil
}
