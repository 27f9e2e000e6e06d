package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/wpblog"
	"github.com/eringen/wpblog/wp"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	logger := log.New("wpblog")
	cfg, err := wpblog.LoadSiteConfig(os.Getenv("WPBLOG_CONFIG"), os.Getenv, logger)
	if err != nil && cmd != "version" && cmd != "help" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "serve":
		if err := serve(wpblog.New(cfg, wpblog.ViewFuncs{})); err != nil {
			logger.Error(err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(cfg.WP, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wpblog export <slug>")
			os.Exit(1)
		}
		if err := runExport(cfg.WP, logger, os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("wpblog %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

type server interface {
	Start() error
	Close() error
}

// serve runs srv until it stops and releases its resources either way.
func serve(srv server) error {
	err := srv.Start()
	if cerr := srv.Close(); err == nil {
		err = cerr
	}
	return err
}

// runCheck prints the resolved integration settings and the latest posts.
func runCheck(cfg wp.Config, logger wp.Logger) error {
	if !cfg.Enabled() {
		return fmt.Errorf("WP_API_BASE is not set")
	}
	fmt.Printf("api base:   %s (%s)\n", cfg.Base, cfg.Base.Style)
	fmt.Printf("site root:  %s\n", cfg.SiteRoot)
	fmt.Printf("media root: %s\n", cfg.MediaRoot)
	if cfg.Lang != "" {
		fmt.Printf("lang:       %s\n", cfg.Lang)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	page, err := wp.NewClient(cfg, wp.WithLogger(logger)).ListPostsPage(ctx, 1, 5, wp.ListOptions{})
	if err != nil {
		return err
	}
	fmt.Printf("posts:      %d in %d pages\n", page.Total, page.TotalPages)
	for _, p := range page.Posts {
		fmt.Printf("  %6d  %s  %s\n", p.ID, p.Slug, p.Data.Title)
	}
	return nil
}

// runExport writes one post as Markdown to stdout.
func runExport(cfg wp.Config, logger wp.Logger, slug string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	post, err := wp.NewClient(cfg, wp.WithLogger(logger)).GetPostBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("post %q: %w", slug, err)
	}
	md, err := wpblog.PostMarkdown(post)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(md)
	return err
}

func printUsage() {
	fmt.Println(`wpblog - a blog front end for a headless WordPress site

Usage:
  wpblog [command] [arguments]

Commands:
  serve          Start the HTTP server (default)
  check          Print the resolved WordPress settings and the latest posts
  export <slug>  Print a post as Markdown
  version        Print the wpblog version
  help           Show this help message

Configuration comes from the environment (WP_API_BASE, SITE_URL, ...) and,
optionally, a YAML file named by WPBLOG_CONFIG.`)
}
