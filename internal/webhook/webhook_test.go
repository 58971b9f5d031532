package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/boulevard/internal/livepreview"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRefresher) Broadcast(livepreview.RefreshNotification) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 2
}

const itemChanged = `{"notifications":[
  {"data":{"system":{"codename":"booking_trends","language":"default","type":"blog_post","collection":"boulevard"}},
   "message":{"environment_id":"env-1","object_type":"content_item","action":"published","delivery_slot":"published"}},
  {"data":{"system":{"codename":"booking_trends","language":"es-ES","type":"blog_post","collection":"boulevard"}},
   "message":{"environment_id":"env-1","object_type":"content_item","action":"changed","delivery_slot":"preview"}}
]}`

func setupTest(t *testing.T, secret string) (*fakeRefresher, chi.Router) {
	t.Helper()
	f := &fakeRefresher{}
	r := chi.NewRouter()
	NewHandler(f, secret, "env-1", nil).RegisterRoutes(r)
	return f, r
}

func post(r http.Handler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", Path, strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleEventBroadcastsOnce(t *testing.T) {
	f, r := setupTest(t, "")

	w := post(r, itemChanged, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Changed != 2 || res.Sessions != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if f.calls != 1 {
		t.Errorf("expected 1 broadcast, got %d", f.calls)
	}
}

func TestHandleEventSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		want      int
	}{
		{"valid", Sign("s3cret", []byte(itemChanged)), http.StatusOK},
		{"wrong secret", Sign("other", []byte(itemChanged)), http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, r := setupTest(t, "s3cret")
			w := post(r, itemChanged, tt.signature)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want != http.StatusOK && f.calls != 0 {
				t.Error("rejected request triggered a refresh")
			}
		})
	}
}

func TestHandleEventIgnoresOtherObjects(t *testing.T) {
	f, r := setupTest(t, "")
	body := `{"notifications":[
	  {"message":{"environment_id":"env-1","object_type":"asset","action":"changed"}},
	  {"message":{"environment_id":"env-2","object_type":"content_item","action":"published"}}
	]}`
	w := post(r, body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if f.calls != 0 {
		t.Errorf("expected no broadcast, got %d", f.calls)
	}
}

func TestHandleEventInvalidJSON(t *testing.T) {
	_, r := setupTest(t, "")
	if w := post(r, "{", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
