package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/EternisAI/user-directory/internal/auth"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/positions"
	"github.com/EternisAI/user-directory/internal/registration"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

type cli struct {
	baseURL   string
	outFormat string // "json" | "text"
	tokenFile string
	timeout   time.Duration
	verbose   bool
}

func (c *cli) client() *directory.Client {
	return directory.NewClient(directory.Config{BaseURL: c.baseURL, Timeout: c.timeout})
}

func (c *cli) tokens(client directory.Executor) *auth.Manager {
	if c.tokenFile == "" {
		return auth.NewManager(client, nil)
	}
	return auth.NewManager(client, auth.NewFileStore(c.tokenFile))
}

// print writes v as indented JSON, or through text when the text format is
// selected.
func (c *cli) print(v any, text func()) error {
	if c.outFormat == "text" {
		text()
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	cl := &cli{
		baseURL:   envOr("DIRECTORY_API_URL", directory.DefaultBaseURL),
		outFormat: envOr("DIRECTORY_OUT", "text"),
		tokenFile: envOr("DIRECTORY_TOKEN_FILE", ""),
		timeout:   30 * time.Second,
	}

	root := &cobra.Command{
		Use:           "directory-cli",
		Short:         "Command line client for the user directory API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cl.outFormat != "json" && cl.outFormat != "text" {
				return fmt.Errorf("--out must be json or text, got %q", cl.outFormat)
			}
			level := slog.LevelWarn
			if cl.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cl.baseURL, "api-url", cl.baseURL, "Base URL of the directory API (env DIRECTORY_API_URL)")
	root.PersistentFlags().StringVar(&cl.outFormat, "out", cl.outFormat, "Output format: json|text (env DIRECTORY_OUT)")
	root.PersistentFlags().StringVar(&cl.tokenFile, "token-file", cl.tokenFile, "Persist the bearer token in this file (env DIRECTORY_TOKEN_FILE)")
	root.PersistentFlags().DurationVar(&cl.timeout, "timeout", cl.timeout, "Request timeout")
	root.PersistentFlags().BoolVarP(&cl.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		usersCmd(cl),
		userCmd(cl),
		positionsCmd(cl),
		tokenCmd(cl),
		registerCmd(cl),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func usersCmd(cl *cli) *cobra.Command {
	var page, count int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List one page of users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			if count < 1 || count > 100 {
				return fmt.Errorf("--count must be between 1 and 100")
			}
			result, err := cl.client().ListUsers(cmd.Context(), page, count)
			if err != nil {
				return err
			}
			return cl.print(result, func() {
				fmt.Printf("page %d/%d (%d users total)\n", result.Page, result.TotalPages, result.TotalUsers)
				for _, u := range result.Users {
					printUser(u)
				}
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&count, "count", 6, "Users per page")
	return cmd
}

func userCmd(cl *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			user, err := cl.client().GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			return cl.print(user, func() { printUser(*user) })
		},
	}
}

func positionsCmd(cl *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List selectable positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := cl.client().GetPositions(cmd.Context())
			if err != nil {
				return err
			}
			return cl.print(list, func() {
				for _, p := range list {
					fmt.Printf("%d\t%s\n", p.ID, p.Name)
				}
			})
		},
	}
}

func tokenCmd(cl *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Fetch a registration token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := cl.tokens(cl.client()).Token(cmd.Context())
			if err != nil {
				return err
			}
			return cl.print(map[string]string{"token": token}, func() { fmt.Println(token) })
		},
	}
}

func registerCmd(cl *cli) *cobra.Command {
	var (
		sub       directory.Submission
		photoPath string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if photoPath != "" {
				photo, err := readPhoto(photoPath)
				if err != nil {
					return err
				}
				sub.Photo = photo
			}

			client := cl.client()
			flow := registration.NewController(cl.tokens(client), positions.NewCache(client, positions.DefaultTTL))
			err := flow.Submit(cmd.Context(), sub)
			snap := flow.Snapshot()

			switch {
			case err == nil:
				return cl.print(map[string]any{"user_id": snap.UserID, "message": snap.Message}, func() {
					fmt.Printf("registered user %d: %s\n", snap.UserID, snap.Message)
				})
			case snap.State == registration.StateAlreadyRegistered:
				return fmt.Errorf("already registered: %s", snap.Message)
			case !snap.ValidationErrors.Empty():
				printValidation(snap.ValidationErrors)
				return fmt.Errorf("validation failed: %s", snap.Message)
			default:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "User name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&sub.Phone, "phone", "", "Phone number, +380XXXXXXXXX")
	cmd.Flags().StringVar(&sub.PositionID, "position-id", "", "Position id (see positions)")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to a jpeg photo")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPhoto(path string) (*directory.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return &directory.Photo{
		Data:        data,
		ContentType: mimetype.Detect(data).String(),
		Filename:    filepath.Base(path),
	}, nil
}

func printUser(u directory.User) {
	fmt.Printf("%d\t%s\t%s\t%s\t%s\t%s\n",
		u.ID, u.Name, u.Email, u.Phone, u.Position, u.RegisteredAt().Format(time.DateOnly))
}

func printValidation(v *registration.ValidationErrors) {
	for _, f := range []registration.Field{
		registration.FieldName,
		registration.FieldEmail,
		registration.FieldPhone,
		registration.FieldPositionID,
		registration.FieldPhoto,
	} {
		if msg := v.Get(f); msg != "" {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f, msg)
		}
	}
}

func describe(err error) string {
	if directory.IsConnectivity(err) {
		return "cannot reach the directory API: " + err.Error()
	}
	return err.Error()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
