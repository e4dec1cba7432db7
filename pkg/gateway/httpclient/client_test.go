package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWithBearerSetsAuthorization(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := WithBearer(New(5*time.Second), "secret")
	if client.Timeout != 5*time.Second {
		t.Fatalf("expected timeout preserved, got %s", client.Timeout)
	}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got != "Bearer secret" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestWithBearerEmptyTokenIsNoop(t *testing.T) {
	base := New(time.Second)
	if WithBearer(base, "") != base {
		t.Fatal("expected base client back for empty token")
	}
}
