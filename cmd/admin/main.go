// Package main provides operator utilities for a community profile.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"communityhub/internal/bootstrap"
	"communityhub/internal/config"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/service"
	"communityhub/internal/storage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Snapshot is the export format of one profile.
type Snapshot struct {
	ExportedAt time.Time         `json:"exportedAt" yaml:"exportedAt"`
	Users      []models.User     `json:"users" yaml:"users"`
	Posts      []models.Post     `json:"posts" yaml:"posts"`
	Categories []models.Category `json:"categories" yaml:"categories"`
}

type admin struct {
	store      *storage.Store
	users      repository.UserRepository
	posts      repository.PostRepository
	categories repository.CategoryRepository
	stats      *service.StatsService
	out        io.Writer
}

func newAdmin(store *storage.Store, out io.Writer) *admin {
	users := repository.NewUserRepository(store)
	posts := repository.NewPostRepository(store)
	return &admin{
		store:      store,
		users:      users,
		posts:      posts,
		categories: repository.NewCategoryRepository(store),
		stats:      service.NewStatsService(users, posts),
		out:        out,
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <user_id>        - Grant the admin role")
	fmt.Println("  admin demote <user_id>         - Revoke the admin role")
	fmt.Println("  admin list-admins              - List all admins")
	fmt.Println("  admin suspend <user_id>        - Suspend a user")
	fmt.Println("  admin unsuspend <user_id>      - Reinstate a user")
	fmt.Println("  admin pending                  - List posts awaiting moderation")
	fmt.Println("  admin approve <post_id>        - Approve a post")
	fmt.Println("  admin reject <post_id>         - Reject a post")
	fmt.Println("  admin stats                    - Print dashboard statistics")
	fmt.Println("  admin export [json|yaml]       - Dump the profile to stdout")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipEvents: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	runErr := newAdmin(rt.Store, os.Stdout).run(ctx, os.Args[1:])
	if err := rt.Close(); err != nil {
		log.Printf("Failed to close runtime: %v", err)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func (a *admin) run(ctx context.Context, args []string) error {
	command := args[0]
	arg := func() (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("usage: admin %s <id>", command)
		}
		return args[1], nil
	}

	switch command {
	case "promote", "demote":
		id, err := arg()
		if err != nil {
			return err
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleUser
		}
		return a.setRole(ctx, id, role)
	case "list-admins":
		return a.listAdmins(ctx)
	case "suspend", "unsuspend":
		id, err := arg()
		if err != nil {
			return err
		}
		return a.setSuspended(ctx, id, command == "suspend")
	case "pending":
		return a.listPending(ctx)
	case "approve", "reject":
		id, err := arg()
		if err != nil {
			return err
		}
		status := models.PostStatusApproved
		if command == "reject" {
			status = models.PostStatusRejected
		}
		return a.moderate(ctx, id, status)
	case "stats":
		return a.printStats(ctx)
	case "export":
		format := "json"
		if len(args) > 1 {
			format = args[1]
		}
		return a.export(ctx, format)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *admin) setRole(ctx context.Context, id string, role models.Role) error {
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == role {
		fmt.Fprintf(a.out, "User %s (ID: %s) already has role %s\n", user.Username, user.ID, role)
		return nil
	}
	if err := a.users.Update(ctx, id, models.UserUpdate{Role: &role}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ %s (ID: %s) is now %s\n", user.Username, user.ID, role)
	return nil
}

func (a *admin) listAdmins(ctx context.Context) error {
	admins, err := a.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		fmt.Fprintln(a.out, "No admins found")
		return nil
	}
	for _, u := range admins {
		fmt.Fprintf(a.out, "ID: %s | Username: %s | Email: %s\n", u.ID, u.Username, u.Email)
	}
	return nil
}

func (a *admin) setSuspended(ctx context.Context, id string, suspended bool) error {
	if _, err := a.users.GetByID(ctx, id); err != nil {
		return err
	}
	if suspended {
		if err := a.users.Suspend(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "✅ User %s suspended\n", id)
		return nil
	}
	if err := a.users.Unsuspend(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ User %s reinstated\n", id)
	return nil
}

func (a *admin) listPending(ctx context.Context) error {
	posts, err := a.posts.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "Moderation queue is empty")
		return nil
	}
	for _, p := range posts {
		fmt.Fprintf(a.out, "ID: %s | Author: %s | Category: %s | %q\n", p.ID, p.Username, p.Category, p.Caption)
	}
	return nil
}

func (a *admin) moderate(ctx context.Context, id string, status models.PostStatus) error {
	if _, err := a.posts.GetByID(ctx, id); err != nil {
		return err
	}
	if err := a.posts.SetStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ Post %s %s\n", id, status)
	return nil
}

func (a *admin) printStats(ctx context.Context) error {
	stats, err := a.stats.ComputeUnchecked(ctx, time.Now())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func (a *admin) export(ctx context.Context, format string) error {
	snap := Snapshot{ExportedAt: time.Now().UTC()}
	var err error
	if snap.Users, err = a.store.LoadUsers(ctx); err != nil {
		return err
	}
	if snap.Posts, err = a.store.LoadPosts(ctx); err != nil {
		return err
	}
	if snap.Categories, err = a.store.LoadCategories(ctx); err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "yml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
}
