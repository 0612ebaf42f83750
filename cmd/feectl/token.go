package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"collegefee_backend/internals/constants"
)

// signToken mints an HS256 token in the shape AuthJWT reads.
func signToken(secret string, userID uuid.UUID, role, department string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if department != "" {
		claims["department"] = department
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func newTokenCmd(e *env) *cobra.Command {
	var (
		user, role, dept string
		ttl              time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("--user must be a uuid: %w", err)
			}
			valid := false
			for _, r := range constants.AllRoles {
				valid = valid || r == role
			}
			if !valid {
				return fmt.Errorf("--role must be one of %v", constants.AllRoles)
			}
			tok, err := signToken(e.cfg.JWTSecret, id, role, dept, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&user, "user", "", "user id")
	f.StringVar(&role, "role", constants.RoleStudent, "student | admin | hod")
	f.StringVar(&dept, "department", "", "department claim (hod tokens)")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
