package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long:  `Sign in against the auth service. The password is prompted for when --password is not given.`,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name (required)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&registerRole, "role", string(types.RoleCandidate), "Account role: hr or candidate")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		if password, err = readPassword(cmd, "Password: "); err != nil {
			return err
		}
	}

	req := types.LoginRequest{Email: strings.TrimSpace(loginEmail), Password: password}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	state, err := a.auth.Login(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("login failed: %s", httpclient.UserMessage(err, "Login failed"))
	}
	printf(cmd, "Signed in as %s (%s)", displayName(state.User), state.Role())
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	password := registerPassword
	if password == "" {
		if password, err = readPassword(cmd, "Password: "); err != nil {
			return err
		}
		confirm, err := readPassword(cmd, "Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	req := types.RegisterRequest{
		Name:     strings.TrimSpace(registerName),
		Email:    strings.TrimSpace(registerEmail),
		Password: password,
		Role:     types.Role(registerRole),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}

	state, err := a.auth.Register(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("registration failed: %s", httpclient.UserMessage(err, "Registration failed"))
	}
	printf(cmd, "Account created. Signed in as %s (%s)", displayName(state.User), state.Role())
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.auth.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	printf(cmd, "You have been signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	u, err := a.user(cmd.Context())
	if err != nil {
		return err
	}
	a.print.PrintUser(u)
	return nil
}

func displayName(u *types.User) string {
	if u == nil {
		return "unknown user"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// readPassword prompts on stderr and reads without echo when stdin is a
// terminal, otherwise it reads one line from the command's input.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := readLine(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

// readLine reads up to the next newline one byte at a time so that nothing
// past the line is consumed from r. io.EOF is returned only when r is
// exhausted before any byte is read.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	read := false
	for {
		n, err := r.Read(buf)
		if n > 0 {
			read = true
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err == io.EOF {
			if !read {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\r"), nil
}
