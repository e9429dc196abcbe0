package cli

import (
	"fmt"
	"strings"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

type createUserOptions struct {
	email    string
	name     string
	role     string
	clientID string
	password string
}

// buildUser validates the options and hashes the password.
func (o createUserOptions) buildUser() (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(o.email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid --email is required")
	}
	if len(o.password) < 8 {
		return nil, fmt.Errorf("--password must be at least 8 characters")
	}

	role := strings.ToUpper(strings.TrimSpace(o.role))
	user := &model.User{Email: email, Name: strings.TrimSpace(o.name), Role: role}

	switch role {
	case model.RoleAdmin, model.RoleTeam:
		if o.clientID != "" {
			return nil, fmt.Errorf("--client-id only applies to CLIENT users")
		}
	case model.RoleClient:
		clientID, err := uuid.Parse(o.clientID)
		if err != nil {
			return nil, fmt.Errorf("CLIENT users need a valid --client-id")
		}
		user.ClientID = &clientID
	default:
		return nil, fmt.Errorf("--role must be ADMIN, CLIENT or TEAM")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hash)
	return user, nil
}

func newCreateUserCmd(app *App) *cobra.Command {
	var opts createUserOptions

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a portal login",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.buildUser()
			if err != nil {
				return err
			}
			db, err := app.OpenDB()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			if err := repository.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.role, "role", model.RoleClient, "ADMIN, CLIENT or TEAM")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "owning client for CLIENT users")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
