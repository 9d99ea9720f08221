package sqlexec

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newProxy(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL+"/tcpcm", srv.Client(), quietLogger())
}

func TestExecute_Success(t *testing.T) {
	var got executeRequest
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/execute", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"data":[{"name":"f&~&1&~&en-US:Root","total":3}],"rowsAffected":[1]}`))
	})

	res, err := c.Execute(context.Background(), "TcPCM_Test", "select 1")
	require.NoError(t, err)

	assert.Equal(t, "TcPCM_Test", got.DBName)
	assert.Equal(t, "select 1", got.Query)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.RowsAffected)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "f&~&1&~&en-US:Root", res.Rows[0].String("name"))
	assert.Equal(t, 3, res.Rows[0].Int("total"))
}

func TestExecute_RowsFallback(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"rows":[{"UniqueKey":"KR"}],"rowsAffected":0}`))
	})

	res, err := c.Execute(context.Background(), "db", "select")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "KR", res.Rows[0].String("UniqueKey"))
}

func TestExecute_EmptyDataIsEmptySlice(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	res, err := c.Execute(context.Background(), "db", "select")
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestExecute_QueryFailed(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Invalid column name 'Foo'"}`))
	})

	res, err := c.Execute(context.Background(), "db", "select Foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryFailed))
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid column name 'Foo'", res.Message)
}

func TestExecute_QueryFailedDefaultMessage(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})

	res, err := c.Execute(context.Background(), "db", "select")
	require.Error(t, err)
	assert.Equal(t, "DB Error", res.Message)
}

func TestExecute_HTTPError(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"Message":"upstream down"}`))
	})

	res, err := c.Execute(context.Background(), "db", "select")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommunication))
	assert.Contains(t, err.Error(), "upstream down")
	assert.False(t, res.Success)
}

func TestExecute_ContextCanceled(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"success":true}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Execute(ctx, "db", "select")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommunication))
}

func TestImportMasterData(t *testing.T) {
	var got importRequest
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tcpcm/api/v1/MasterData/Import", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"imported":2}`))
	})

	rows := []map[string]any{{"Number": "KR"}, {"Number": "US"}}
	res, err := c.ImportMasterData(context.Background(), "6f1c2f4e-1a2b-4c3d-8e9f-001122334455", rows)
	require.NoError(t, err)

	assert.Equal(t, "6f1c2f4e-1a2b-4c3d-8e9f-001122334455", got.ConfigurationGuid)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, map[string]any{"imported": float64(2)}, res.Data)
}

func TestImportMasterData_RequiresGUID(t *testing.T) {
	c := NewClient("http://unused", "http://unused", nil, quietLogger())
	_, err := c.ImportMasterData(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestImportMasterData_ServerMessage(t *testing.T) {
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"Message":"Configuration not found"}`))
	})

	_, err := c.ImportMasterData(context.Background(), "guid", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Configuration not found")
}

func TestNewHTTPClient_PasswordGrant(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tcpcm/token":
			require.NoError(t, r.ParseForm())
			form = map[string]string{
				"grant_type": r.PostForm.Get("grant_type"),
				"username":   r.PostForm.Get("username"),
				"client_id":  r.PostForm.Get("client_id"),
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","expires_in":3600}`))
		case "/api/execute":
			assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			w.Write([]byte(`{"success":true,"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	hc, err := NewHTTPClient(context.Background(), srv.URL+"/tcpcm", Credentials{
		ClientID: "TcPCM", ClientSecret: "secret", User: "svc", Password: "pw",
	}, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "password", form["grant_type"])
	assert.Equal(t, "svc", form["username"])
	assert.Equal(t, "TcPCM", form["client_id"])

	c := NewClient(srv.URL, srv.URL+"/tcpcm", hc, quietLogger())
	_, err = c.Execute(context.Background(), "db", "select")
	require.NoError(t, err)
}

func TestNewHTTPClient_NoUser(t *testing.T) {
	hc, err := NewHTTPClient(context.Background(), "http://unused", Credentials{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, hc.Timeout)
}

func TestAPIMessage_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("가", 150) + strings.Repeat("x", 100)
	msg := apiMessage([]byte(body))

	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, 200, utf8.RuneCountInString(msg))
	assert.Equal(t, strings.Repeat("가", 150)+strings.Repeat("x", 50), msg)

	assert.Equal(t, "쿼리 실패", apiMessage([]byte(`{"message":"쿼리 실패"}`)))
	assert.Equal(t, "short", apiMessage([]byte("short")))
}
