// Package sqlexec is the client of the generic "execute a statement against a
// named database" proxy and of the master-data import endpoint. It performs no
// retries; every failure is terminal for that call.
package sqlexec

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

var (
	// ErrQueryFailed is returned when the proxy answers with success=false.
	ErrQueryFailed = errors.New("query failed")
	// ErrCommunication covers transport failures and non-2xx responses.
	ErrCommunication = errors.New("server communication failed")
)

// Result is the decoded proxy response.
type Result struct {
	Success      bool
	Rows         []Row
	RowsAffected int
	Message      string
}

// Executor runs one statement against a named database.
type Executor interface {
	Execute(ctx context.Context, database, statement string) (Result, error)
}

type executeRequest struct {
	DBName string `json:"dbName"`
	Query  string `json:"query"`
}

type executeResponse struct {
	Success      bool    `json:"success"`
	Data         []Row   `json:"data"`
	Rows         []Row   `json:"rows"`
	RowsAffected any     `json:"rowsAffected"`
	Message      *string `json:"message"`
}

// Client talks to the proxy over HTTP. The zero value is not usable; build it
// with NewClient.
type Client struct {
	serverURL string
	apiBase   string
	http      *http.Client
	log       logrus.FieldLogger
}

// NewClient returns a client posting statements to serverURL+"/api/execute"
// and imports to apiBase+"/api/v1/MasterData/Import".
func NewClient(serverURL, apiBase string, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		serverURL: serverURL,
		apiBase:   apiBase,
		http:      httpClient,
		log:       log.WithField("component", "sqlexec"),
	}
}

// Execute implements Executor.
func (c *Client) Execute(ctx context.Context, database, statement string) (Result, error) {
	start := time.Now()
	res, err := c.execute(ctx, database, statement)

	status := "ok"
	switch {
	case errors.Is(err, ErrQueryFailed):
		status = "failed"
	case err != nil:
		status = "error"
	}
	queriesTotal.WithLabelValues(database, status).Inc()
	queryDuration.WithLabelValues(database).Observe(time.Since(start).Seconds())

	if err != nil {
		c.log.WithFields(logrus.Fields{
			"database": database,
			"status":   status,
		}).WithError(err).Warn("statement failed")
	}
	return res, err
}

func (c *Client) execute(ctx context.Context, database, statement string) (Result, error) {
	body, err := json.Marshal(executeRequest{DBName: database, Query: statement})
	if err != nil {
		return Result{}, errors.Wrap(err, "encode execute request")
	}

	var decoded executeResponse
	if err := c.postJSON(ctx, c.serverURL+"/api/execute", body, &decoded); err != nil {
		return Result{Message: ErrCommunication.Error()}, err
	}

	if !decoded.Success {
		msg := "DB Error"
		if decoded.Message != nil && *decoded.Message != "" {
			msg = *decoded.Message
		}
		return Result{Message: msg}, errors.Wrap(ErrQueryFailed, msg)
	}

	rows := decoded.Data
	if rows == nil {
		rows = decoded.Rows
	}
	if rows == nil {
		rows = []Row{}
	}
	res := Result{
		Success:      true,
		Rows:         rows,
		RowsAffected: rowsAffected(decoded.RowsAffected),
	}
	if decoded.Message != nil {
		res.Message = *decoded.Message
	}
	return res, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(ErrCommunication, "post %s: %v", url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(ErrCommunication, "read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrCommunication, "post %s: status %d: %s", url, resp.StatusCode, apiMessage(payload))
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(ErrCommunication, "decode response: %v", err)
	}
	return nil
}

// rowsAffected accepts either a number or the per-statement array some
// drivers report.
func rowsAffected(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case []any:
		total := 0
		for _, n := range t {
			total += cast.ToInt(n)
		}
		return total
	default:
		return cast.ToInt(t)
	}
}

// apiMessage extracts the "Message"/"message" field of an error body, or
// falls back to the raw (truncated) text.
func apiMessage(payload []byte) string {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err == nil {
		for _, k := range []string{"Message", "message"} {
			if msg := cast.ToString(body[k]); msg != "" {
				return msg
			}
		}
	}
	return truncateRunes(string(payload), maxMessageRunes)
}

const maxMessageRunes = 200

// truncateRunes cuts s to at most n runes, never inside a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
