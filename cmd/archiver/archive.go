package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sharkey-archiver/internal/archive"
	"sharkey-archiver/internal/config"
	"sharkey-archiver/internal/media"
	"sharkey-archiver/internal/misskey"
	"sharkey-archiver/internal/resolve"
	"sharkey-archiver/internal/storage"
	"sharkey-archiver/internal/storage/migrations"
)

var archiveCmd = &cobra.Command{
	Use:   "archive INPUT",
	Short: "Archive a post or user timeline from the command line",
	Long: `Archive a single post or a user's timeline without starting the server.

INPUT takes the same forms as the web UI: a post URL, a user profile URL,
an @user@instance handle, or a bare username combined with --instance.

Examples:
  # Archive one post
  archiver archive https://example.social/notes/abc123

  # Archive a user's posts
  archiver archive @alice@example.social

  # Bare username, instance given explicitly
  archiver archive alice --instance example.social`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().String("instance", "", "Instance base URL for bare usernames")
	archiveCmd.Flags().Int("max-posts", 0, "Post cap for user archives (0 uses DEFAULT_MAX_POSTS)")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	input := strings.TrimSpace(args[0])
	instanceFlag, _ := cmd.Flags().GetString("instance")
	maxPosts, _ := cmd.Flags().GetInt("max-posts")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %v", err)
	}

	// Logs go to stderr so the result summary stays clean on stdout
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	target, err := resolve.Resolve(input)
	if err != nil {
		return err
	}

	// An instance detected in the input wins over the flag
	instance := target.Instance
	if instance == "" {
		instance = strings.TrimSpace(instanceFlag)
	}
	if instance == "" {
		return fmt.Errorf("--instance is required for bare usernames")
	}
	if !strings.HasPrefix(instance, "http") {
		instance = "https://" + instance
	}
	if maxPosts <= 0 {
		maxPosts = cfg.DefaultMaxPosts
	}

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("failed to run migrations: %v", err)
	}

	store := storage.NewPostRepo(db)
	client := misskey.NewClient()
	fetcher := media.NewFetcher(cfg.MediaDir)

	// Snapshots need the running server for the browser to navigate to, so
	// one-shot archiving skips them
	pipeline := archive.NewPipeline(client, store, fetcher, nil)

	ctx := cmd.Context()
	switch target.Kind {
	case resolve.KindNote:
		fmt.Printf("Archiving post %s from %s...\n", target.ID, instance)
		res, err := pipeline.ArchiveNote(ctx, instance, target.ID)
		if err != nil {
			return fmt.Errorf("archive failed: %v", err)
		}
		if res.Status == "already_archived" {
			fmt.Println("✓ Already in archive.")
		} else {
			fmt.Printf("✓ Post archived as %s\n", res.PostID)
		}

	case resolve.KindUser:
		fmt.Printf("Archiving up to %d posts by @%s from %s...\n", maxPosts, target.ID, instance)
		res, err := pipeline.ArchiveUser(ctx, instance, target.ID, maxPosts, func(processed, fetched int) {
			fmt.Printf("\r%d saved (%d fetched so far)", processed, fetched)
		})
		fmt.Println()
		if err != nil {
			return fmt.Errorf("archive failed: %v", err)
		}
		fmt.Printf("✓ Done! %d new posts archived, %d already existed.\n", res.Archived, res.Skipped)

	default:
		return fmt.Errorf("unrecognised input: %s", input)
	}
	return nil
}
