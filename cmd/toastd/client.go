package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/server"
	"github.com/vango-dev/toastd/pkg/toast"
)

// apiClient talks to a running toastd server.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(flags *globalFlags, serverURL string) (*apiClient, error) {
	if serverURL == "" {
		cfg, err := config.LoadOrDefault(flags.configPath)
		if err != nil {
			return nil, err
		}
		serverURL = cfg.URL()
	}
	return &apiClient{
		base: strings.TrimRight(serverURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// do sends a request and decodes a JSON response into out when non-nil.
func (c *apiClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return errors.New("T200").Wrap(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New("T201").WithDetail("Could not reach " + c.base).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return errors.New("T202").WithDetail(fmt.Sprintf("%s %s: %s", method, path, e.Error))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func showCmd(flags *globalFlags) *cobra.Command {
	var (
		serverURL   string
		typ         string
		title       string
		duration    time.Duration
		persistent  bool
		actionLabel string
		actionID    string
	)

	cmd := &cobra.Command{
		Use:   "show <message>",
		Short: "Show a toast on a running server",
		Long: `Show a toast on a running server.

Without --duration the toast uses its type's default (success 4s,
error 6s, info 4s, warning 5s).

Examples:
  toastd show "Saved"
  toastd show --type=error --title="Upload failed" "Disk full"
  toastd show --persistent --action=Undo --action-id=undo-42 "Item deleted"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("T200").
					WithDetail("show takes exactly one message argument").
					WithSuggestion(`Quote the message: toastd show "Saved"`)
			}
			t, err := toast.ParseType(typ)
			if err != nil {
				return errors.New("T103").Wrap(err)
			}

			payload := map[string]any{
				"type":    string(t),
				"message": args[0],
			}
			if title != "" {
				payload["title"] = title
			}
			if actionLabel != "" {
				payload["actionLabel"] = actionLabel
				payload["actionID"] = actionID
			}
			switch {
			case persistent:
				payload["duration"] = 0
			case duration > 0:
				payload["duration"] = duration.Milliseconds()
			}

			client, err := newAPIClient(flags, serverURL)
			if err != nil {
				return err
			}
			var resp server.CreateResponse
			if err := client.do(cmd.Context(), http.MethodPost, "/api/toasts", payload, http.StatusCreated, &resp); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Shown %s", resp.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&serverURL, "server", "", "Server URL (default from config)")
	f.StringVarP(&typ, "type", "t", "info", "Toast type: success, error, info or warning")
	f.StringVar(&title, "title", "", "Optional heading")
	f.DurationVarP(&duration, "duration", "d", 0, "Auto-dismiss after this long (default per type)")
	f.BoolVar(&persistent, "persistent", false, "Never auto-dismiss")
	f.StringVar(&actionLabel, "action", "", "Label of an action button")
	f.StringVar(&actionID, "action-id", "", "Id passed to the action handler")

	return cmd
}

func listCmd(flags *globalFlags) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List toasts on a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(flags, serverURL)
			if err != nil {
				return err
			}
			var resp server.ListResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/toasts", nil, http.StatusOK, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSTATE\tMESSAGE")
			for _, s := range resp.Toasts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Type, s.State, s.Message)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Server URL (default from config)")
	return cmd
}

func dismissCmd(flags *globalFlags) *cobra.Command {
	var (
		serverURL string
		remove    bool
	)

	cmd := &cobra.Command{
		Use:   "dismiss <id>...",
		Short: "Dismiss toasts on a running server",
		Long: `Dismiss toasts on a running server.

A dismissed toast plays its exit animation before it closes. With
--remove the toast is torn down immediately instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("T200").WithDetail("dismiss needs at least one toast id")
			}
			client, err := newAPIClient(flags, serverURL)
			if err != nil {
				return err
			}
			for _, id := range args {
				method, path := http.MethodPost, "/api/toasts/"+id+"/dismiss"
				if remove {
					method, path = http.MethodDelete, "/api/toasts/"+id
				}
				if err := client.do(cmd.Context(), method, path, nil, http.StatusNoContent, nil); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Dismissed %s", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Server URL (default from config)")
	cmd.Flags().BoolVar(&remove, "remove", false, "Tear down immediately, skipping the exit animation")
	return cmd
}
