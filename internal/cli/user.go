package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glitch-app/glitch/internal/modules/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user and print its bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := invoke[service.UserService](container())
			if err != nil {
				return err
			}
			return runUserCreate(cmd.Context(), cmd.OutOrStdout(), users, args[0])
		},
	}

	var enable, disable bool
	premium := &cobra.Command{
		Use:   "premium <user-id>",
		Short: "Grant or revoke premium, which lifts the quest creation quota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable == disable {
				return errors.New("pass exactly one of --enable or --disable")
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			users, err := invoke[service.UserService](container())
			if err != nil {
				return err
			}
			return runUserPremium(cmd.Context(), cmd.OutOrStdout(), users, id, enable)
		},
	}
	premium.Flags().BoolVar(&enable, "enable", false, "Grant premium")
	premium.Flags().BoolVar(&disable, "disable", false, "Revoke premium")

	user.AddCommand(create, premium)
	return user
}

func runUserCreate(ctx context.Context, out io.Writer, users service.UserService, username string) error {
	u, token, err := users.CreateWithToken(ctx, username)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, RenderSuccess(fmt.Sprintf("created %s (%s)", u.Username, u.ID)))
	fmt.Fprintf(out, "%s %s\n", KeyStyle.Render("token:"), token)
	fmt.Fprintln(out, RenderWarning("the token is shown once, store it now"))
	return nil
}

func runUserPremium(ctx context.Context, out io.Writer, users service.UserService, id uuid.UUID, premium bool) error {
	if err := users.SetPremium(ctx, id, premium); err != nil {
		return err
	}
	state := "revoked"
	if premium {
		state = "granted"
	}
	fmt.Fprintln(out, RenderSuccess(fmt.Sprintf("premium %s for %s", state, id)))
	return nil
}
