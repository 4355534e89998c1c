package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/gamma"
	"github.com/polyscout/polyscout/internal/logger"
	"github.com/polyscout/polyscout/internal/models"
	"github.com/polyscout/polyscout/internal/query"
	"github.com/polyscout/polyscout/internal/render"
)

var (
	configPath = pflag.StringP("config", "c", "", "path to configuration file")
	limit      = pflag.IntP("limit", "l", 0, "maximum number of results")
	showAll    = pflag.BoolP("all", "a", false, "show every outcome, no truncation")
	asJSON     = pflag.Bool("json", false, "emit JSON instead of text")
)

// errUsage marks command-line mistakes that should print usage and exit 2.
var errUsage = errors.New("usage")

func main() {
	pflag.Usage = usage
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "polyscout: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "polyscout: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Results go to stdout, logs to stderr, so piped output stays clean.
	logger.Init(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	runLog := logger.WithField("run_id", uuid.NewString())

	n := cfg.Query.DefaultLimit
	if pflag.CommandLine.Changed("limit") {
		n = *limit
	}

	client := gamma.NewClient(cfg.Gamma.APIURL, cfg.Gamma.Timeout, cfg.Gamma.MaxRetries, cfg.Gamma.RetryDelayBase)
	svc := query.NewService(client, cfg.Query)
	out := render.New(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, svc, out, pflag.Args(), n); err != nil {
		switch {
		case errors.Is(err, errUsage):
			fmt.Fprintf(os.Stderr, "polyscout: %v\n\n", err)
			usage()
			os.Exit(2)
		case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrNotFound):
			fmt.Fprintf(os.Stderr, "polyscout: %v\n", err)
			os.Exit(1)
		default:
			runLog.WithError(err).Error("command failed")
			fmt.Fprintf(os.Stderr, "polyscout: %v\n", err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, svc *query.Service, out *render.Renderer, args []string, limit int) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "trending":
		views, err := svc.Trending(ctx, limit, *showAll)
		if err != nil {
			return err
		}
		if *asJSON {
			return out.JSON(views)
		}
		out.EventList("Trending events", views)
		return nil

	case "featured":
		views, fallback, err := svc.Featured(ctx, limit, *showAll)
		if err != nil {
			return err
		}
		if *asJSON {
			return out.JSON(struct {
				Fallback bool              `json:"fallback"`
				Events   []query.EventView `json:"events"`
			}{fallback, views})
		}
		if fallback {
			out.Noticef("No featured events right now; showing highest-volume events instead.")
		}
		out.EventList("Featured events", views)
		return nil

	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("%w: search needs query text", errUsage)
		}
		q := models.NewSearchQuery(strings.Join(rest, " "))
		q.Limit = limit
		q.ShowAll = *showAll
		q.AsJSON = *asJSON
		results, err := svc.Search(ctx, q)
		if err != nil {
			return err
		}
		if q.AsJSON {
			return out.JSON(results)
		}
		out.SearchResults(results)
		return nil

	case "event":
		if len(rest) != 1 {
			return fmt.Errorf("%w: event needs exactly one slug or URL", errUsage)
		}
		v, err := svc.Event(ctx, rest[0], *showAll)
		if err != nil {
			return err
		}
		if *asJSON {
			return out.JSON(v)
		}
		out.EventDetail(v)
		return nil

	case "market":
		if len(rest) == 0 {
			return fmt.Errorf("%w: market needs a slug or URL", errUsage)
		}
		outcome := strings.Join(rest[1:], " ")
		v, err := svc.Market(ctx, rest[0], outcome, *showAll)
		if err != nil {
			return err
		}
		if *asJSON {
			return out.JSON(v)
		}
		out.EventDetail(v)
		return nil

	case "category":
		if len(rest) != 1 {
			return fmt.Errorf("%w: category needs exactly one name", errUsage)
		}
		views, err := svc.Category(ctx, rest[0], limit, *showAll)
		if err != nil {
			return err
		}
		if *asJSON {
			return out.JSON(views)
		}
		out.EventList(fmt.Sprintf("Top %s events", strings.ToLower(rest[0])), views)
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func usage() {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}

	fmt.Fprintf(os.Stderr, `polyscout queries Polymarket prediction markets, read-only.

Usage:
  polyscout [flags] <command> [args]

Commands:
  trending                     highest 24h-volume open events
  featured                     editorially featured events
  search <text>                fuzzy search by slug, title, or outcome name
  event <slug|url>             one event in full detail
  market <slug|url> [outcome]  outcomes of one event, optionally narrowed
  category <name>              browse one category: %s

Flags:
`, strings.Join(names, ", "))
	pflag.PrintDefaults()
}
