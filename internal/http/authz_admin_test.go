package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAdminGuardRequiresAdmin(t *testing.T) {
	ta := newTestApp(t)

	// Anonymous -> login redirect that comes back here
	resp, err := ta.app.Test(httptest.NewRequest("GET", "/admin/import", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("unexpected redirect target %q", loc)
	}

	// Logged-in customer -> 403
	ta.bind(t, "sid-user", "u-kari")
	reqUser := httptest.NewRequest("GET", "/admin/import", nil)
	reqUser.AddCookie(&http.Cookie{Name: "sid", Value: "sid-user"})
	respUser, err := ta.app.Test(reqUser)
	if err != nil {
		t.Fatal(err)
	}
	if respUser.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden for non-admin, got %d", respUser.StatusCode)
	}

	// Admin -> 200
	ta.bind(t, "sid-admin", "u-admin")
	reqAdmin := httptest.NewRequest("GET", "/admin/import", nil)
	reqAdmin.AddCookie(&http.Cookie{Name: "sid", Value: "sid-admin"})
	respAdmin, err := ta.app.Test(reqAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if respAdmin.StatusCode != http.StatusOK {
		t.Fatalf("admin expected 200, got %d", respAdmin.StatusCode)
	}
}

func TestAdminAPIGuardAnswersJSON(t *testing.T) {
	ta := newTestApp(t)
	ta.bind(t, "sid-user", "u-kari")

	for _, sid := range []string{"", "sid-user", "sid-unknown"} {
		req := httptest.NewRequest("POST", "/api/admin/import", strings.NewReader(`{"urls":["https://www.temu.com/goods.html?goods_id=1"]}`))
		req.Header.Set("Content-Type", "application/json")
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		}
		resp, err := ta.app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("sid %q: expected 401, got %d", sid, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("sid %q: expected JSON body, got %q", sid, ct)
		}
	}
}
