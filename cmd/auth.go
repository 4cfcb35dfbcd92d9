package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/cinehint/internal/auth"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin restores a stored session or signs in with Google.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.forceButton = cmd.Bool("button")
	defer r.auth.Close()

	if err := r.auth.Mount(ctx); err != nil {
		return err
	}
	if err := r.auth.AuthError(); err != nil {
		r.logger.Info("stored session not restored", "error", err)
	}
	if u := r.auth.User(); u != nil {
		return r.writePlain("Already signed in as %s\n", userLabel(u))
	}

	r.logger.Info("starting Google sign-in")
	r.writePlain("Signing in with Google...\n")

	user, err := r.auth.SignIn(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrSignInDeclined) {
			return r.writePlain("Sign-in cancelled\n")
		}
		return err
	}
	return r.writePlain("✓ Signed in as %s\n", userLabel(user))
}

// AuthLogout destroys the session and forgets the cached Google account.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.HasToken(ctx) {
		return r.writePlain("Not signed in\n")
	}
	if err := r.auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out incomplete: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus checks the backend health endpoint and the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	health, healthErr := r.api.Health(ctx)
	signedIn := r.session.HasToken(ctx) && r.auth.VerifyAuth(ctx)

	if cmd.Bool("json") {
		status := map[string]any{"healthy": healthErr == nil, "authenticated": signedIn, "health": health}
		if signedIn {
			status["user"] = r.auth.User()
		}
		return r.writeJSON(status, true)
	}

	if healthErr != nil {
		r.writePlain("✗ Service unavailable: %v\n", healthErr)
	} else {
		status, ok := health["status"].(string)
		if !ok {
			status = "unknown"
		}
		r.writePlain("✓ Service is healthy\nStatus: %s\n", status)
	}

	if signedIn {
		r.writePlain("Authentication: ✓ Signed in as %s\n", userLabel(r.auth.User()))
	} else {
		r.writePlain("Authentication: ✗ Not signed in\n")
	}

	if healthErr != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, healthErr)
	}
	return nil
}

// AuthImport stores a bearer token taken from a browser-copied cURL command and verifies it.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var (
		req *shared.CurlRequest
		err error
	)
	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
	}
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	token, err := req.BearerToken()
	if err != nil {
		return err
	}

	if err := r.session.Establish(ctx, token, models.UserProfile{}); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if !r.auth.VerifyAuth(ctx) {
		cause := r.auth.AuthError()
		if cause == nil {
			cause = &auth.AuthError{Reason: auth.ReasonSessionExpired}
		}
		return fmt.Errorf("%w: imported token rejected: %v", shared.ErrAuthFailed, cause)
	}

	r.logger.Info("session imported", "url", req.URL)
	return r.writePlain("✓ Signed in as %s\n", userLabel(r.auth.User()))
}

func userLabel(u *models.UserProfile) string {
	switch {
	case u == nil:
		return "unknown user"
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}
