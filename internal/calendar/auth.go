package calendar

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	log "log/slog"

	"golang.org/x/oauth2"
)

// Setup runs the interactive consent flow on a loopback listener and caches
// the resulting token. It is invoked from aide-ctl as an out-of-band step;
// the daemon itself never blocks on user consent.
func (c *Client) Setup(ctx context.Context) error {
	cfg, err := c.oauthConfig()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for oauth callback: %w", err)
	}
	defer ln.Close()

	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := fmt.Sprintf("aide-%d", time.Now().UnixNano())

	codeCh := make(chan string, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		codeCh <- code
	})}
	go srv.Serve(ln)
	defer srv.Close()

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Println("Open this URL in your browser to authorize calendar access:")
	fmt.Println(url)

	var code string
	select {
	case code = <-codeCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	if err := c.saveToken(tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	log.Info("Calendar token saved", "path", c.tokenFile)
	return nil
}
