// Package main provides campusctl, a command line front end to the campus
// session manager.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var errCommandFailed = errors.New("command failed")

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "campusctl",
		Short:         "Campus session manager",
		Long:          "campusctl logs in to the campus identity provider, keeps the token pair fresh and queries student data.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Identity provider base URL (overrides LDAP_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "Token store: memory, file, redis, postgres (overrides TOKEN_STORE)")
	cmd.PersistentFlags().StringVar(&opts.tokenFile, "token-file", "", "Token file path for the file store (overrides TOKEN_FILE)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging on stderr")

	cmd.AddCommand(
		loginCmd(opts),
		logoutCmd(opts),
		statusCmd(opts),
		profileCmd(opts),
		coursesCmd(opts),
		gradesCmd(opts),
		attendanceCmd(opts),
		messagesCmd(opts),
		dashboardCmd(opts),
	)

	return cmd
}

// withApp builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// printResult writes the envelope as JSON and turns a failed result into a
// non-zero exit.
func printResult[T any](w io.Writer, data T, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(service.NewResult(data, err)); encErr != nil {
		return encErr
	}
	if err != nil {
		return errCommandFailed
	}
	return nil
}

func loginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				username = os.Getenv("CAMPUS_USERNAME")
			}
			if password == "" {
				password = os.Getenv("CAMPUS_PASSWORD")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				err := a.session.Login(ctx, models.LoginRequest{Username: username, Password: password})
				return printResult(cmd.OutOrStdout(), map[string]string{"username": username}, err)
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Student login (or CAMPUS_USERNAME)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (or CAMPUS_PASSWORD)")

	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return printResult[any](cmd.OutOrStdout(), nil, a.session.Logout(ctx))
			})
		},
	}
}

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a usable session exists, refreshing if needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				ok := a.session.IsAuthenticated(ctx)
				return printResult(cmd.OutOrStdout(), map[string]bool{"authenticated": ok}, nil)
			})
		},
	}
}

func profileCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the student profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				p, err := a.data.Profile(ctx, force)
				return printResult(cmd.OutOrStdout(), p, err)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")

	return cmd
}

func coursesCmd(opts *options) *cobra.Command {
	var force, current, past bool

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if current && past {
				return errors.New("--current and --past are mutually exclusive")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				switch {
				case current:
					list, err := a.data.CurrentCourses(ctx, force)
					return printResult(cmd.OutOrStdout(), list, err)
				case past:
					list, err := a.data.CompletedCourses(ctx, force)
					return printResult(cmd.OutOrStdout(), list, err)
				default:
					list, err := a.data.Courses(ctx, force)
					return printResult(cmd.OutOrStdout(), list, err)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")
	cmd.Flags().BoolVar(&current, "current", false, "Only courses in progress")
	cmd.Flags().BoolVar(&past, "past", false, "Only completed courses")

	return cmd
}

func gradesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List grades",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				list, err := a.data.Grades(ctx)
				return printResult(cmd.OutOrStdout(), list, err)
			})
		},
	}
}

func attendanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "attendance",
		Short: "List attendance records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				list, err := a.data.Attendance(ctx)
				return printResult(cmd.OutOrStdout(), list, err)
			})
		},
	}
}

func messagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "List messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				list, err := a.data.Messages(ctx)
				return printResult(cmd.OutOrStdout(), list, err)
			})
		},
	}
}

func dashboardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Profile, courses, grades and attendance in one call",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				d, err := a.data.Dashboard(ctx)
				return printResult(cmd.OutOrStdout(), d, err)
			})
		},
	}
}
