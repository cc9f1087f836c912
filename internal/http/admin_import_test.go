package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bookbright/internal/services"
)

func postImportAPI(t *testing.T, ta *testApp, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/admin/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-admin"})
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestImportAPIRejectsBadRequests(t *testing.T) {
	ta := newTestApp(t)
	ta.bind(t, "sid-admin", "u-admin")

	cases := []struct {
		name, body, want string
	}{
		{"not json", `urls=x`, "Ugyldig"},
		{"empty list", `{"urls":[]}`, "ikke-tom"},
		{"blank only", `{"urls":["  "]}`, "ugyldig URL"},
		{"blank among valid", `{"urls":["","https://www.temu.com/goods.html?goods_id=1"]}`, "ugyldig URL"},
		{"bad url", `{"urls":["ftp://temu.com/x"]}`, "ugyldig URL"},
		{"unknown provider", `{"urls":["https://www.amazon.com/dp/1"],"provider":"amazon"}`, "ukjent leverandør"},
	}
	for _, tc := range cases {
		resp := postImportAPI(t, ta, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
		var out map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if !strings.Contains(out["error"], tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, out["error"], tc.want)
		}
	}
}

func TestImportAPIReportsEveryURL(t *testing.T) {
	ta := newTestApp(t)
	ta.bind(t, "sid-admin", "u-admin")

	resp := postImportAPI(t, ta, `{"urls":[
		"https://www.temu.com/goods.html?goods_id=601",
		"https://www.alibaba.com/product-detail/missing_1.html",
		"https://www.temu.com/goods.html?goods_id=602"]}`)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, body)
	}
	var out struct {
		Results []services.BulkImportResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out.Results))
	}
	want := []services.ImportStatus{services.StatusSuccess, services.StatusError, services.StatusSuccess}
	for i, r := range out.Results {
		if r.Status != want[i] {
			t.Fatalf("result %d: expected %s, got %s (%s)", i, want[i], r.Status, r.Message)
		}
	}
	if out.Results[0].ProductID == "" || out.Results[0].Provider != "temu" {
		t.Fatalf("success result incomplete: %+v", out.Results[0])
	}
	if out.Results[1].Provider != "alibaba" || out.Results[1].Kind == "" {
		t.Fatalf("failed result should name provider and kind: %+v", out.Results[1])
	}

	var n int
	if err := ta.db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 catalog rows, got %d", n)
	}

	// Re-importing the first URL is a duplicate warning, not a new row.
	resp = postImportAPI(t, ta, `{"urls":["https://temu.com/goods.html?goods_id=601&utm_source=x"]}`)
	out.Results = nil
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Status != services.StatusWarning {
		t.Fatalf("expected duplicate warning, got %+v", out.Results)
	}
	if err := ta.db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("duplicate import created a row; count=%d", n)
	}
}

func TestImportedProductIsVisibleInCatalog(t *testing.T) {
	ta := newTestApp(t)
	ta.bind(t, "sid-admin", "u-admin")

	resp := postImportAPI(t, ta, `{"urls":["https://www.temu.com/goods.html?goods_id=601"],"provider":"temu"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import failed: %d", resp.StatusCode)
	}

	listResp, err := ta.app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Products []struct {
			Slug     string   `json:"slug"`
			Name     string   `json:"name"`
			Price    string   `json:"price"`
			Category string   `json:"category"`
			Images   []string `json:"images"`
		} `json:"products"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Products) != 1 {
		t.Fatalf("expected one product, got %d", len(list.Products))
	}
	p := list.Products[0]
	// 12.99 USD -> base 136 NOK -> selling 340
	if p.Price != "340" || p.Category != "Klypelys" || len(p.Images) != 2 {
		t.Fatalf("unexpected catalog row %+v", p)
	}

	page, err := ta.app.Test(httptest.NewRequest("GET", "/product/"+p.Slug, nil))
	if err != nil {
		t.Fatal(err)
	}
	if page.StatusCode != http.StatusOK {
		t.Fatalf("product page expected 200, got %d", page.StatusCode)
	}
	body, _ := io.ReadAll(page.Body)
	if !strings.Contains(string(body), p.Name) {
		t.Fatalf("product page missing name %q", p.Name)
	}
}

func TestImportFormRendersResults(t *testing.T) {
	ta := newTestApp(t)
	ta.bind(t, "sid-admin", "u-admin")

	get := httptest.NewRequest("GET", "/admin/import", nil)
	get.AddCookie(&http.Cookie{Name: "sid", Value: "sid-admin"})
	getResp, err := ta.app.Test(get)
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(getResp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}

	post := func(form url.Values, withToken bool) *http.Response {
		if withToken {
			form.Set("csrf", tok)
		}
		req := httptest.NewRequest("POST", "/admin/import", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-admin"})
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
		resp, err := ta.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	if resp := post(url.Values{"urls": {"https://www.temu.com/goods.html?goods_id=601"}}, false); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("form post without csrf expected 403, got %d", resp.StatusCode)
	}

	resp := post(url.Values{"urls": {"not a url"}}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad form expected 400, got %d", resp.StatusCode)
	}

	resp = post(url.Values{"urls": {"https://www.temu.com/goods.html?goods_id=601\nhttps://www.temu.com/search?q=lamp"}}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import form expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if !strings.Contains(s, services.MsgImported) {
		t.Fatalf("results table missing success message; body=%s", s)
	}
	if !strings.Contains(s, services.WarnNotProductURL) {
		t.Fatalf("non-product URL warning missing; body=%s", s)
	}
}

func TestProvidersAPI(t *testing.T) {
	ta := newTestApp(t)
	ta.bind(t, "sid-admin", "u-admin")

	req := httptest.NewRequest("GET", "/api/admin/providers", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-admin"})
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Providers []string `json:"providers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if strings.Join(out.Providers, ",") != "temu,alibaba" {
		t.Fatalf("unexpected providers %v", out.Providers)
	}
}
