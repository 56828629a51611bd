package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/2co2co0417/P-Alert/internal/backend"
	"github.com/2co2co0417/P-Alert/internal/config"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/dashboard"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/drinks"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
)

// RenderOptions drives a one-shot render without a server or database.
type RenderOptions struct {
	// File is a saved payload. When empty the backend is queried.
	File string
	// URL overrides BACKEND_URL and BACKEND_PATH.
	URL    string
	Drinks []string
	// Format is "json" or "text".
	Format string
}

// Render runs the dashboard pipeline once against an in-memory page and
// writes the result to w.
func Render(ctx context.Context, cfg config.Config, opts RenderOptions, w io.Writer, logger *slog.Logger) error {
	var fetcher dashboard.Fetcher
	switch {
	case opts.File != "":
		fetcher = fileFetcher(opts.File)
	default:
		if opts.URL != "" {
			base, path, err := splitURL(opts.URL)
			if err != nil {
				return err
			}
			cfg.BackendURL, cfg.BackendPath = base, path
		}
		client := backend.New(cfg, logger)
		defer client.Close()
		fetcher = client
	}

	ctrl := dashboard.NewController(dashboard.Deps{
		Fetcher:     fetcher,
		Preferences: staticPreferences(opts.Drinks),
		Page:        page.New(logger),
		Logger:      logger,
	})
	defer func() { _ = ctrl.Close() }()

	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}

	snap := ctrl.Snapshot()
	switch opts.Format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "text":
		return writeText(w, snap)
	default:
		return fmt.Errorf("unknown format %q (allowed: json, text)", opts.Format)
	}
}

func writeText(w io.Writer, snap page.Snapshot) error {
	var b strings.Builder
	fmt.Fprintf(&b, "現在の気圧   %s hPa (%s)\n", snap.Text(page.TargetCurrent), snap.Text(page.TargetCurrentTime))
	fmt.Fprintf(&b, "3時間変化    %s\n", snap.Text(page.TargetDelta3h))
	fmt.Fprintf(&b, "危険時間帯   %s\n", snap.Text(page.TargetDanger))
	if snap.Badge != nil {
		fmt.Fprintf(&b, "リスク       %s [%s]\n", snap.Badge.Text, snap.Badge.Level)
	}
	if snap.Drinks != nil {
		if msg := snap.Drinks.Message(); msg != "" {
			fmt.Fprintf(&b, "お酒         %s\n", msg)
		}
		for _, a := range snap.Drinks.Assessments {
			fmt.Fprintf(&b, "  %s %s %.1f %s\n", a.Profile.Icon, a.Profile.DisplayName, a.Score, a.Tier.Label())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type fileFetcher string

func (f fileFetcher) FetchPressure(context.Context) ([]byte, error) {
	return os.ReadFile(string(f))
}

type staticPreferences []string

func (s staticPreferences) GetPreferredDrinks(context.Context, int64) ([]string, error) {
	return s, nil
}

func (s staticPreferences) SetPreferredDrinks(context.Context, int64, []string) error {
	return fmt.Errorf("preferences are read-only in render mode")
}

// ParseDrinkList splits a comma separated flag value into catalog keys.
func ParseDrinkList(s string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, ok := drinks.ParseKey(part)
		if !ok {
			return nil, fmt.Errorf("unknown drink %q", strings.TrimSpace(part))
		}
		keys = append(keys, string(k))
	}
	return keys, nil
}

func splitURL(raw string) (base, path string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid url %q (expected absolute http(s) URL)", raw)
	}
	path = u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return u.Scheme + "://" + u.Host, path, nil
}
