package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
)

// AuthCommand returns the auth subcommand group.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Account and session commands",
		Subcommands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Usage: "Password (prompted when omitted)"},
				},
				Action: authLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session token",
				Action: authLogout,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.StringFlag{Name: "password", Usage: "Password (prompted when omitted)"},
					&cli.StringFlag{Name: "confirm", Usage: "Password confirmation (prompted when omitted)"},
				},
				Action: authRegister,
			},
			{
				Name:   "whoami",
				Usage:  "Show the logged-in user",
				Action: authWhoami,
			},
			{
				Name:      "verify-email",
				Usage:     "Confirm an email address",
				ArgsUsage: "TOKEN",
				Action:    authVerifyEmail,
			},
			{
				Name:  "resend-verification",
				Usage: "Send the verification mail again",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
				},
				Action: authResendVerification,
			},
			{
				Name:  "forgot-password",
				Usage: "Request a password reset mail",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
				},
				Action: authForgotPassword,
			},
			{
				Name:  "reset-password",
				Usage: "Set a new password with a reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Usage: "Reset token from the mail"},
					&cli.StringFlag{Name: "password", Usage: "New password (prompted when omitted)"},
					&cli.StringFlag{Name: "confirm", Usage: "Password confirmation (prompted when omitted)"},
				},
				Action: authResetPassword,
			},
			{
				Name:  "profile",
				Usage: "Show or update the profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "New first name"},
					&cli.StringFlag{Name: "last-name", Usage: "New last name"},
					&cli.StringFlag{Name: "email", Usage: "New email"},
				},
				Action: authProfile,
			},
		},
	}
}

func authLogin(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	email, err := env.stringOrPrompt(c, "email", "Email", false)
	if err != nil {
		return err
	}
	password, err := env.stringOrPrompt(c, "password", "Password", true)
	if err != nil {
		return err
	}

	if _, err := env.Session.Login(c.Context, email, password); err != nil {
		return err
	}

	user := env.Session.Snapshot().User
	if env.Structured() {
		return env.Print(user)
	}
	fmt.Fprintf(c.App.Writer, "Logged in as %s\n", displayName(user))
	return nil
}

func authLogout(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	if err := env.Session.Logout(); err != nil {
		env.Log.Warn("clear stored token failed", "error", err)
	}
	fmt.Fprintln(c.App.Writer, "Logged out.")
	return nil
}

func authRegister(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	var reg domain.Registration
	if reg.Email, err = env.stringOrPrompt(c, "email", "Email", false); err != nil {
		return err
	}
	if reg.FirstName, err = env.stringOrPrompt(c, "first-name", "First name", false); err != nil {
		return err
	}
	if reg.LastName, err = env.stringOrPrompt(c, "last-name", "Last name", false); err != nil {
		return err
	}
	if reg.Password, err = env.stringOrPrompt(c, "password", "Password", true); err != nil {
		return err
	}
	confirm, err := env.stringOrPrompt(c, "confirm", "Confirm password", true)
	if err != nil {
		return err
	}

	if _, err := env.Session.Register(c.Context, reg, confirm); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Account created for %s. Check your inbox to verify your email address.\n", reg.Email)
	return nil
}

// whoami is the structured form of the logged-in user.
type whoami struct {
	domain.User `yaml:",inline"`
	Name        string    `json:"name" yaml:"name"`
	ExpiresAt   time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func authWhoami(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	user, err := env.RequireUser(c.Context)
	if err != nil {
		return err
	}

	info := whoami{User: *user, Name: user.FullName()}
	if claims, err := env.Session.Claims(); err == nil {
		info.ExpiresAt = claims.ExpiresAt
	}

	if env.Structured() {
		return env.Print(info)
	}
	fmt.Fprintf(c.App.Writer, "%s\n", displayName(user))
	if !info.ExpiresAt.IsZero() {
		fmt.Fprintf(c.App.Writer, "Session expires %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func authVerifyEmail(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	token := c.Args().First()
	if token == "" {
		return domain.ErrMissingArgument.WithDetails("verification token")
	}
	if _, err := env.Session.VerifyEmail(c.Context, token); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Email verified. You can now log in.")
	return nil
}

func authResendVerification(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	email, err := env.stringOrPrompt(c, "email", "Email", false)
	if err != nil {
		return err
	}
	if _, err := env.Session.ResendVerification(c.Context, email); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Verification mail sent to %s.\n", email)
	return nil
}

func authForgotPassword(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	email, err := env.stringOrPrompt(c, "email", "Email", false)
	if err != nil {
		return err
	}
	if _, err := env.Session.ForgotPassword(c.Context, email); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "If the address is registered, a reset mail is on its way.")
	return nil
}

func authResetPassword(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	token, err := env.stringOrPrompt(c, "token", "Reset token", false)
	if err != nil {
		return err
	}
	password, err := env.stringOrPrompt(c, "password", "New password", true)
	if err != nil {
		return err
	}
	confirm, err := env.stringOrPrompt(c, "confirm", "Confirm password", true)
	if err != nil {
		return err
	}
	if _, err := env.Session.ResetPassword(c.Context, token, password, confirm); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Password changed. You can now log in.")
	return nil
}

func authProfile(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	user, err := env.RequireUser(c.Context)
	if err != nil {
		return err
	}

	if c.IsSet("first-name") || c.IsSet("last-name") || c.IsSet("email") {
		upd := domain.ProfileUpdate{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		}
		if c.IsSet("first-name") {
			upd.FirstName = c.String("first-name")
		}
		if c.IsSet("last-name") {
			upd.LastName = c.String("last-name")
		}
		if c.IsSet("email") {
			upd.Email = c.String("email")
		}
		if _, err := env.Session.UpdateProfile(c.Context, upd); err != nil {
			return err
		}
		user = env.Session.Snapshot().User
		if !env.Structured() {
			fmt.Fprintln(c.App.Writer, "Profile updated.")
		}
	}

	return env.Print(user)
}

func displayName(u *domain.User) string {
	if u == nil {
		return "-"
	}
	if name := u.FullName(); name != "" {
		return fmt.Sprintf("%s <%s>", name, u.Email)
	}
	return u.Email
}
