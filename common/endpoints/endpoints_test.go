package endpoints_test

import (
	"io/ioutil"
	"net/http/httptest"
	"testing"

	"github.com/louishp/marathon/common/endpoints"
)

func Test_HealthAndStats(t *testing.T) {
	stat := endpoints.MakeStatsReceiver("testScope")
	stat.Counter("requestCounter").Inc(2)
	admin := endpoints.NewAdminServer("localhost:0", stat)

	server := httptest.NewServer(admin.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 || string(body) != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", resp.StatusCode, body)
	}

	resp, err = server.Client().Get(server.URL + "/admin/metrics.json")
	if err != nil {
		t.Fatalf("stats request failed: %v", err)
	}
	body, _ = ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Unexpected content type %q", ct)
	}
	if string(body) != `{"testScope/requestCounter":2}` {
		t.Errorf("Unexpected stats body: %s", body)
	}
}
