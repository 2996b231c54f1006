package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

// passwordEnv lets scripts pass the password without exposing it in the process list.
const passwordEnv = "PORTFOLIO_ADMIN_PASSWORD"

var (
	userFirstName string
	userLastName  string
	userEmail     string
	userPassword  string
	userTimezone  string
)

func init() {
	userCreateCmd.Flags().StringVar(&userFirstName, "first-name", "", "first name (required)")
	userCreateCmd.Flags().StringVar(&userLastName, "last-name", "", "last name (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password, or set "+passwordEnv)
	userCreateCmd.Flags().StringVar(&userTimezone, "timezone", user.DefaultTimezone, "IANA timezone")
	_ = userCreateCmd.MarkFlagRequired("first-name")
	_ = userCreateCmd.MarkFlagRequired("last-name")
	_ = userCreateCmd.MarkFlagRequired("email")

	userSetPasswordCmd.Flags().StringVar(&userEmail, "email", "", "login email (required)")
	userSetPasswordCmd.Flags().StringVar(&userPassword, "password", "", "new password, or set "+passwordEnv)
	_ = userSetPasswordCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userSetPasswordCmd)
}

func resolvePassword() (string, error) {
	password := userPassword
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters long")
	}
	return password, nil
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account.

Examples:
  PORTFOLIO_ADMIN_PASSWORD=s3cretpass portfolio-admin user create \
    --first-name=Ada --last-name=Lovelace --email=ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}

		pg, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer pg.Close()

		svc := user.NewService(user.NewRepository(pg.DB))
		created, err := svc.Register(cmd.Context(), user.RegisterInput{
			FirstName: userFirstName,
			LastName:  userLastName,
			Email:     userEmail,
			Password:  password,
			Timezone:  userTimezone,
		})
		if err != nil {
			if errors.Is(err, user.ErrEmailExists) {
				return fmt.Errorf("an account with email %s already exists", userEmail)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", created.ID, created.UUID)
		return nil
	},
}

var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Replace the password of an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}

		pg, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer pg.Close()

		repo := user.NewRepository(pg.DB)
		found, err := repo.GetByEmail(cmd.Context(), userEmail)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return fmt.Errorf("no account with email %s", userEmail)
			}
			return err
		}

		if err := user.NewService(repo).UpdatePassword(cmd.Context(), found.ID, password); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "password updated for user %d\n", found.ID)
		return nil
	},
}
