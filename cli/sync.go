// ABOUTME: Google import CLI commands
// ABOUTME: Handles OAuth setup, contact and calendar import, and import status
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"text/tabwriter"
	"time"

	"golang.org/x/oauth2"

	"github.com/harperreed/immo/config"
	"github.com/harperreed/immo/db"
	"github.com/harperreed/immo/sync"
)

// ImportInitCommand runs the OAuth flow and stores the token.
func ImportInitCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import init", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	oauthCfg, err := sync.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret)
	if err != nil {
		return err
	}

	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}
		token, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}
		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: sync.CallbackAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	authURL := oauthCfg.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)
		if err := sync.SaveToken(sync.TokenPath(), token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", sync.TokenPath())
		fmt.Println("Ready! Run 'immo import contacts' to import Google contacts.")
		return nil
	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

func authorized(cfg *config.Config) (*oauth2.Config, *oauth2.Token, error) {
	oauthCfg, err := sync.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret)
	if err != nil {
		return nil, nil, err
	}
	token, err := sync.LoadToken(sync.TokenPath())
	if err != nil {
		return nil, nil, fmt.Errorf("no authentication token found. Run 'immo import init' first: %w", err)
	}
	return oauthCfg, token, nil
}

func newImporter(b *Backend) (*sync.Importer, error) {
	database, err := b.Database()
	if err != nil {
		return nil, err
	}
	return sync.NewImporter(b.Workspace.Store, db.NewSyncLog(database)), nil
}

// ImportContactsCommand imports Google contacts, merging on email or name.
func ImportContactsCommand(b *Backend, args []string) error {
	fs := flag.NewFlagSet("import contacts", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	oauthCfg, token, err := authorized(b.Config())
	if err != nil {
		return err
	}
	client, err := sync.NewPeopleClient(ctx, oauthCfg, token)
	if err != nil {
		return fmt.Errorf("failed to create People client: %w", err)
	}
	im, err := newImporter(b)
	if err != nil {
		return err
	}

	fmt.Println("Importing Google Contacts...")
	sum, err := im.ImportContacts(ctx, client)
	if err != nil {
		return fmt.Errorf("contact import failed: %w", err)
	}
	sum.Report("contacts")
	return nil
}

// ImportCalendarCommand imports Google Calendar events as tasks.
func ImportCalendarCommand(b *Backend, args []string) error {
	fs := flag.NewFlagSet("import calendar", flag.ExitOnError)
	initial := fs.Bool("initial", false, "Full import (last 6 months)")
	_ = fs.Parse(args)

	ctx := context.Background()
	oauthCfg, token, err := authorized(b.Config())
	if err != nil {
		return err
	}
	client, err := sync.NewCalendarClient(ctx, oauthCfg, token)
	if err != nil {
		return fmt.Errorf("failed to create Calendar client: %w", err)
	}
	im, err := newImporter(b)
	if err != nil {
		return err
	}

	fmt.Println("Importing Google Calendar...")
	sum, err := im.ImportCalendar(ctx, client, *initial)
	if err != nil {
		return fmt.Errorf("calendar import failed: %w", err)
	}
	sum.Report("events")
	return nil
}

// ImportStatusCommand prints the state of each import service.
func ImportStatusCommand(b *Backend, args []string) error {
	fs := flag.NewFlagSet("import status", flag.ExitOnError)
	_ = fs.Parse(args)

	database, err := b.Database()
	if err != nil {
		return err
	}
	states, err := db.NewSyncLog(database).States()
	if err != nil {
		return fmt.Errorf("failed to read import state: %w", err)
	}
	if len(states) == 0 {
		fmt.Println("No imports yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVICE\tSTATUS\tLAST SYNC\tERROR")
	for _, s := range states {
		last := "never"
		if s.LastSyncTime != nil {
			last = s.LastSyncTime.Local().Format("2006-01-02 15:04")
		}
		errMsg := "-"
		if s.ErrorMessage != nil && *s.ErrorMessage != "" {
			errMsg = *s.ErrorMessage
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Service, s.Status, last, errMsg)
	}
	return w.Flush()
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
