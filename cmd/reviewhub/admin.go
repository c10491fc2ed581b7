package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/github"
	jiraadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/jira"
	sqliteadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewhub/internal/application"
	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

func (c *cli) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var (
		password string
		admin    bool
	)

	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeDB(db)

			auth := application.NewAuthService(sqliteadapter.NewUserRepo(db), c.logger)
			user, err := auth.CreateUser(cmd.Context(), args[0], password, admin)
			if errors.Is(err, driven.ErrUserAlreadyExists) {
				return fmt.Errorf("user %q already exists", args[0])
			}
			if err != nil {
				return describeFormError(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
			return err
		},
	}
	add.Flags().StringVar(&password, "password", "", "password for HTTP Basic authentication")
	add.Flags().BoolVar(&admin, "admin", false, "grant administrator access")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}

func (c *cli) tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}

	var note string

	create := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Issue an API token and print it",
		Long:  "Issue an API token for a user. The token is printed once; only its hash is stored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeDB(db)

			auth := application.NewAuthService(sqliteadapter.NewUserRepo(db), c.logger)
			token, err := auth.CreateToken(cmd.Context(), args[0], note)
			if errors.Is(err, application.ErrNotFound) {
				return fmt.Errorf("user %q does not exist", args[0])
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	create.Flags().StringVar(&note, "note", "", "description of what the token is for")

	cmd.AddCommand(create)
	return cmd
}

func (c *cli) repoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
	}

	var (
		tracker    string
		trackerURL string
	)

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a repository and its bug tracker",
		Example: `  reviewhub repo add backend --tracker jira --tracker-url https://example.atlassian.net
  reviewhub repo add widgets --tracker github --tracker-url octo/widgets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := newRepository(args[0], tracker, trackerURL)
			if err != nil {
				return err
			}

			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeDB(db)

			added, err := sqliteadapter.NewRepoRepo(db).Add(cmd.Context(), repo)
			if errors.Is(err, driven.ErrRepoAlreadyExists) {
				return fmt.Errorf("repository %q already exists", repo.Name)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added repository %s (id %d)\n", added.Name, added.ID)
			return err
		},
	}
	add.Flags().StringVar(&tracker, "tracker", "", "bug tracker type: jira or github")
	add.Flags().StringVar(&trackerURL, "tracker-url", "", "JIRA base URL, or owner/repo for GitHub")

	list := &cobra.Command{
		Use:   "list",
		Short: "List repositories and their bug trackers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeDB(db)

			repos, err := sqliteadapter.NewRepoRepo(db).ListAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tTRACKER\tTRACKER URL")
			for _, repo := range repos {
				tracker := string(repo.BugTrackerType)
				if tracker == "" {
					tracker = "-"
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", repo.ID, repo.Name, tracker, repo.BugTrackerURL)
			}
			return w.Flush()
		},
	}

	bug := &cobra.Command{
		Use:   "bug NAME BUG_ID",
		Short: "Look up a bug in a repository's tracker",
		Long:  "Look up a bug in a repository's tracker to check its configuration. A tracker that cannot be reached prints empty fields.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeDB(db)

			repos := sqliteadapter.NewRepoRepo(db)
			repo, err := repos.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if repo == nil {
				return fmt.Errorf("repository %q does not exist", args[0])
			}

			trackers := application.NewTrackerProvider(newTrackerFactory(c.cfg, c.logger))
			bugs := application.NewBugInfoService(repos, trackers, 0, nil, c.logger)
			lookup, err := bugs.GetBugInfo(cmd.Context(), repo.ID, args[1])
			if errors.Is(err, application.ErrNoBugTracker) {
				return fmt.Errorf("repository %q has no bug tracker", repo.Name)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nurl: %s\nstatus: %s\nsummary: %s\n",
				lookup.ID, lookup.URL, lookup.Status, lookup.Summary)
			return err
		},
	}

	cmd.AddCommand(add, list, bug)
	return cmd
}

// newRepository validates the bug tracker settings of a repository to add.
// JIRA URLs are stored normalized.
func newRepository(name, tracker, trackerURL string) (model.Repository, error) {
	if name == "" {
		return model.Repository{}, errors.New("repository name is required")
	}

	repo := model.Repository{Name: name, BugTrackerType: model.BugTrackerType(tracker)}

	switch repo.BugTrackerType {
	case model.BugTrackerNone:
		if trackerURL != "" {
			return model.Repository{}, errors.New("--tracker-url requires --tracker")
		}
	case model.BugTrackerJIRA:
		normalized, err := jiraadapter.NormalizeURL(trackerURL)
		if err != nil {
			return model.Repository{}, err
		}
		repo.BugTrackerURL = normalized
	case model.BugTrackerGitHub:
		if err := githubadapter.ValidateRepoName(trackerURL); err != nil {
			return model.Repository{}, err
		}
		repo.BugTrackerURL = trackerURL
	default:
		return model.Repository{}, fmt.Errorf("unknown bug tracker type %q", tracker)
	}

	return repo, nil
}

// describeFormError flattens field validation errors into a single message.
func describeFormError(err error) error {
	var formErr *application.FormError
	if !errors.As(err, &formErr) {
		return err
	}

	names := make([]string, 0, len(formErr.Fields))
	for name := range formErr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(formErr.Fields[name], " "))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
}
