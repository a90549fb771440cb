package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/debate/internal/session"
	"github.com/joss/debate/internal/store"
)

// prefLastEmail remembers the last email used to sign in.
const prefLastEmail = "last_email"

func loginCmd() *cobra.Command {
	var email string

	cmd := newCommand(CommandConfig{
		Use:    "login",
		Short:  "Sign in and keep the session",
		Action: "login",
		Args:   cobra.NoArgs,
		Example: `  debate login --email ada@example.com
  echo "$PASSWORD" | debate login --email ada@example.com`,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if email == "" {
				last, err := cli.local.GetPref(ctx, prefLastEmail)
				if err != nil && !store.IsNotFound(err) {
					return err
				}
				label := "Email: "
				if last != "" {
					label = "Email [" + last + "]: "
				}
				email, err = prompt(stdin, label)
				if err != nil {
					return err
				}
				if strings.TrimSpace(email) == "" {
					email = last
				}
			}

			password, err := readPassword()
			if err != nil {
				return err
			}

			sess, err := cli.sessions.SignIn(ctx, email, password)
			if err != nil {
				return err
			}
			if err := cli.local.SetPref(ctx, prefLastEmail, sess.Email); err != nil {
				cli.log.Warn("save_pref_failed", map[string]interface{}{"key": prefLastEmail}, err)
			}

			cli.out.Println("Signed in as %s", sess.Username)
			return nil
		},
	})

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when empty)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:    "logout",
		Short:  "Forget the stored session",
		Action: "logout",
		Args:   cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			if err := cli.sessions.SignOut(cmd.Context()); err != nil {
				return err
			}
			cli.out.Println("Signed out")
			return nil
		},
	})
}

func whoamiCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:    "whoami",
		Short:  "Show the signed-in user",
		Action: "whoami",
		Args:   cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			sess, err := cli.sessions.Current(cmd.Context())
			if errors.Is(err, session.ErrNoSession) {
				sess, err = nil, nil
			}
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(sess)
			}
			cli.out.Raw(cli.render.Session(sess))
			return nil
		},
	})
}
