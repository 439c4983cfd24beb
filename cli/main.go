package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"ytprogress"
	"ytprogress/config"
	"ytprogress/internal/cache"
	"ytprogress/internal/logging"
	"ytprogress/progress"
	"ytprogress/youtube"
)

var errMissingPlaylist = errors.New("missing playlist id (use --playlist or set playlist_id)")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "summary":
		err = cmdSummary(args)
	case "list":
		err = cmdList(args)
	case "done":
		err = cmdMark(command, args)
	case "undo":
		err = cmdMark(command, args)
	case "toggle":
		err = cmdMark(command, args)
	case "show":
		err = cmdShow(args)
	case "check":
		err = cmdCheck(args)
	case "clear-cache":
		err = cmdClearCache(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		// A bare invocation with flags means summary
		if strings.HasPrefix(command, "-") {
			err = cmdSummary(os.Args[1:])
		} else {
			fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
			printUsage()
			os.Exit(1)
		}
	}

	if err != nil {
		renderError(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytprogress - track how much of a YouTube playlist you have watched

Usage:
  ytprogress summary [flags]            Show watched and remaining time
  ytprogress list [flags]               List videos with their completion state
  ytprogress done [flags] <video>       Mark a video as watched
  ytprogress undo [flags] <video>       Mark a video as not watched
  ytprogress toggle [flags] <video>     Flip a video's watched state
  ytprogress show [flags] <video>       Show a video's links and description
  ytprogress check [flags]              Report stale or ambiguous completions
  ytprogress clear-cache                Drop cached durations and descriptions
  ytprogress help                       Show this help message

<video> is a video ID, an exact title, or a fuzzy title match.

Examples:
  ytprogress summary --playlist PLxxxxxxxx
  ytprogress list --filter lesson --remaining
  ytprogress done "Introduction to Go"
  ytprogress toggle dQw4w9WgXcQ

Configuration is read from ytprogress.yaml and YTPROGRESS_* environment
variables. The API key may also be given as YOUTUBE_API_KEY.

For help on specific command: ytprogress <command> -h
`)
}

func newFlagSet(name, usage string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	playlist := fs.String("playlist", "", "Playlist ID (overrides playlist_id from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytprogress %s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}
	return fs, playlist
}

// withTracker loads config, logging and the playlist, then runs fn.
func withTracker(playlist string, fn func(ctx context.Context, t *ytprogress.Tracker) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if playlist != "" {
		cfg.PlaylistID = playlist
	}
	if strings.TrimSpace(cfg.PlaylistID) == "" {
		return errMissingPlaylist
	}

	logger, closeLog, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	t, err := ytprogress.Open(ctx, cfg, ytprogress.WithLogger(logger))
	if err != nil {
		return err
	}
	defer t.Close()

	if len(t.Session.DuplicateTitles()) > 0 {
		fmt.Fprintln(os.Stderr, warnStyle.Render("Warning: some videos share a title; run 'ytprogress check'"))
	}

	err = fn(ctx, t)
	logger.Debug("command finished", "quota_used", t.QuotaUsed(), "session", t.Session.ID.String())
	return err
}

func cmdSummary(args []string) error {
	fs, playlist := newFlagSet("summary", "summary [flags]")
	asJSON := fs.Bool("json", false, "Print the summary as JSON")
	fs.Parse(args)

	return withTracker(*playlist, func(ctx context.Context, t *ytprogress.Tracker) error {
		sum := t.Session.Summary()
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		renderSummary(os.Stdout, t.PlaylistID, sum, terminalWidth())
		return nil
	})
}

func cmdList(args []string) error {
	fs, playlist := newFlagSet("list", "list [flags]")
	filter := fs.String("filter", "", "Only titles fuzzily matching this text")
	remaining := fs.Bool("remaining", false, "Only videos not yet watched")
	fs.Parse(args)

	return withTracker(*playlist, func(ctx context.Context, t *ytprogress.Tracker) error {
		items := t.Session.Items
		if *filter != "" {
			items = progress.Filter(items, *filter)
		}
		if *remaining {
			var open []youtube.PlaylistItem
			for _, it := range items {
				if !t.Session.IsCompleted(it) {
					open = append(open, it)
				}
			}
			items = open
		}

		renderList(os.Stdout, items, t.Session.IsCompleted)
		fmt.Fprintf(os.Stderr, "\nTotal: %d of %d videos\n", len(items), len(t.Session.Items))
		return nil
	})
}

func cmdMark(command string, args []string) error {
	fs, playlist := newFlagSet(command, command+" [flags] <video>")
	fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintf(os.Stderr, "Error: missing video\n")
		fs.Usage()
		os.Exit(1)
	}

	return withTracker(*playlist, func(ctx context.Context, t *ytprogress.Tracker) error {
		item, err := t.Find(query)
		if err != nil {
			return fmt.Errorf("%q: %w", query, err)
		}

		switch command {
		case "done":
			err = t.Session.MarkCompleted(ctx, item)
		case "undo":
			err = t.Session.MarkIncomplete(ctx, item)
		default:
			_, err = t.Session.Toggle(ctx, item)
		}
		if err != nil {
			return err
		}

		state := "not watched"
		if t.Session.IsCompleted(item) {
			state = doneStyle.Render(doneChar + " watched")
		}
		sum := t.Session.Summary()
		fmt.Printf("%s: %s\n", titleStyle.Render(item.Title), state)
		fmt.Printf("%.2f%% watched, %s remaining\n", sum.Percent, progress.FormatDuration(sum.RemainingSeconds))
		return nil
	})
}

func cmdShow(args []string) error {
	fs, playlist := newFlagSet("show", "show [flags] <video>")
	noDesc := fs.Bool("no-description", false, "Skip fetching the description")
	fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintf(os.Stderr, "Error: missing video\n")
		fs.Usage()
		os.Exit(1)
	}

	return withTracker(*playlist, func(ctx context.Context, t *ytprogress.Tracker) error {
		item, err := t.Find(query)
		if err != nil {
			return fmt.Errorf("%q: %w", query, err)
		}

		var desc string
		if !*noDesc {
			desc, err = t.Describe(ctx, item)
			if err != nil {
				t.Logger().Warn("description unavailable", "video", item.ID, "error", err)
				desc = ""
			}
		}
		renderItem(os.Stdout, item, t.Session.IsCompleted(item), desc)
		return nil
	})
}

func cmdCheck(args []string) error {
	fs, playlist := newFlagSet("check", "check [flags]")
	fs.Parse(args)

	return withTracker(*playlist, func(ctx context.Context, t *ytprogress.Tracker) error {
		renderCheck(os.Stdout, t.Session.Orphans(), t.Session.DuplicateTitles())
		return nil
	})
}

func cmdClearCache(args []string) error {
	fs := flag.NewFlagSet("clear-cache", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.CachePath == "" {
		fmt.Println("No cache configured.")
		return nil
	}

	c, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Printf("Cleared %s\n", cfg.CachePath)
	return nil
}
