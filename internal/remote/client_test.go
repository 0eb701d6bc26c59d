package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
	"github.com/terminusgps/terminusgps-notifications/internal/wire"
)

// fakeRemote 按 svc 分发的桩服务器
func fakeRemote(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc := r.URL.Query().Get("svc")
		h, ok := handlers[svc]
		if !ok {
			t.Fatalf("unexpected svc %q", svc)
		}
		h(w, r)
	}))
}

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"token/login": func(w http.ResponseWriter, r *http.Request) {
			var params map[string]any
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("params")), &params))
			assert.Equal(t, "secret-token", params["token"])

			w.Write([]byte(`{"eid":"sid-123","user":{"id":9001}}`))
		},
	})
	defer srv.Close()

	sess, err := newTestClient(srv.URL).Login(context.Background(), "secret-token")
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sess.SID)
	assert.Equal(t, int64(9001), sess.UserID)
}

func TestLogin_EmptyToken(t *testing.T) {
	_, err := newTestClient("http://unreachable.invalid").Login(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestLogin_RemoteError(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"token/login": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":4,"reason":"invalid token"}`))
		},
	})
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "bad-token")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 4, apiErr.Code)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestResolveResource(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"core/search_items": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "sid-123", r.FormValue("sid"))
			w.Write([]byte(`{"items":[{"id":555,"nm":"notifications"}]}`))
		},
	})
	defer srv.Close()

	res, err := newTestClient(srv.URL).ResolveResource(context.Background(), &Session{SID: "sid-123"}, "notifications")
	require.NoError(t, err)
	assert.Equal(t, int64(555), res.ID)
}

func TestResolveResource_CreatesWhenMissing(t *testing.T) {
	var created int
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"core/search_items": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		},
		"core/create_resource": func(w http.ResponseWriter, r *http.Request) {
			created++
			var params map[string]any
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("params")), &params))
			assert.Equal(t, float64(9001), params["creatorId"])
			assert.Equal(t, "notifications", params["name"])
			assert.Equal(t, float64(1), params["skipCreatorCheck"])

			w.Write([]byte(`{"item":{"id":777,"nm":"notifications"}}`))
		},
	})
	defer srv.Close()

	sess := &Session{SID: "sid-123", UserID: 9001}
	res, err := newTestClient(srv.URL).ResolveResource(context.Background(), sess, "notifications")
	require.NoError(t, err)
	assert.Equal(t, int64(777), res.ID)
	assert.Equal(t, 1, created)
}

func TestResolveResource_CreateError(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"core/search_items": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		},
		"core/create_resource": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":1001,"reason":"creation limit reached"}`))
		},
	})
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveResource(context.Background(), &Session{SID: "sid-123", UserID: 9001}, "notifications")

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestSearchUnits(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"core/search_items": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[{"id":1001,"nm":"Unit #1"},{"id":1002,"nm":"Unit #2"}]}`))
		},
	})
	defer srv.Close()

	units, err := newTestClient(srv.URL).SearchUnits(context.Background(), &Session{SID: "sid-123"})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, int64(1001), units[0].ID)
	assert.Equal(t, "Unit #2", units[1].Name)
}

func TestUpdateNotification_Create(t *testing.T) {
	var calls int
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"resource/update_notification": func(w http.ResponseWriter, r *http.Request) {
			calls++
			var p struct {
				CallMode string `json:"callMode"`
				ID       int64  `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("params")), &p))
			assert.Equal(t, wire.CallModeCreate, p.CallMode)
			assert.Equal(t, int64(0), p.ID)

			w.Write([]byte(`[314,{"n":"Ignition alert"}]`))
		},
	})
	defer srv.Close()

	n := &domain.Notification{
		Name:          "Ignition alert",
		Method:        domain.MethodSMS,
		TriggerKind:   trigger.KindAlarm,
		TriggerParams: &trigger.AlarmParams{},
		UnitIDs:       []int64{1001},
	}

	remoteID, err := newTestClient(srv.URL).UpdateNotification(
		context.Background(), &Session{SID: "sid-123"}, wire.EncodeCreate(555, n))
	require.NoError(t, err)
	assert.Equal(t, int64(314), remoteID)
	assert.Equal(t, 1, calls, "mutations must not be retried")
}

func TestUpdateNotification_RemoteError(t *testing.T) {
	var calls int
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"resource/update_notification": func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"error":7,"reason":"access denied"}`))
		},
	})
	defer srv.Close()

	n := &domain.Notification{
		RemoteID:      314,
		TriggerKind:   trigger.KindAlarm,
		TriggerParams: &trigger.AlarmParams{},
	}

	_, err := newTestClient(srv.URL).UpdateNotification(
		context.Background(), &Session{SID: "sid-123"}, wire.EncodeDelete(555, n))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 7, apiErr.Code)
	assert.Equal(t, 1, calls, "mutations must not be retried")
}
