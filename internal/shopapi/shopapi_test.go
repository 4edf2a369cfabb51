package shopapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/infoabcd/Warehouse-Query-System/config"
	"github.com/infoabcd/Warehouse-Query-System/internal/app"
	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"github.com/infoabcd/Warehouse-Query-System/internal/media"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maskedBody = `{"error":"NOT_FOUND","message":"Page Not Found"}`

type harness struct {
	t     *testing.T
	srv   *webserver.Server
	app   *app.Application
	admin string
	clerk string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "shop.db"
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "admin-pass"

	a := app.NewApplication(cfg)
	require.NoError(t, a.Init(cfg))
	t.Cleanup(a.Release)
	a.OverrideMedia(media.NewStore(afero.NewMemMapFs(), 1024))

	hash, err := auth.HashPassword("clerk-pass")
	require.NoError(t, err)
	require.NoError(t, a.DB().Create(&domain.User{Username: "clerk", Password: hash}).Error)

	srv := webserver.NewServer(cfg.Web, a.Tokens())
	Register(srv, a)

	h := &harness{t: t, srv: srv, app: a}
	h.admin = h.login("admin", "admin-pass")
	h.clerk = h.login("clerk", "clerk-pass")
	return h
}

func (h *harness) login(username, password string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "authToken" {
			assert.True(h.t, ck.HttpOnly)
			assert.False(h.t, ck.Secure)
			return ck.Value
		}
	}
	h.t.Fatal("login did not set the auth cookie")
	return ""
}

func (h *harness) do(method, target, token, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: token})
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (h *harness) createCommodity(title string, cats ...int64) int64 {
	h.t.Helper()
	catJSON, _ := json.Marshal(cats)
	body := fmt.Sprintf(`{"title":%q,"price":10,"original_price":5,"stock":100,"categories":%s}`, title, catJSON)
	rec := h.do(http.MethodPost, "/admin/create", h.admin, body)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(h.t, rec)
	return int64(out["commodity"].(map[string]interface{})["id"].(float64))
}

func TestBowlScenario(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/admin/create", h.admin,
		`{"title":"Bowl","price":10,"original_price":5,"stock":100,"categories":[1]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "Commodity created", out["message"])
	commodity := out["commodity"].(map[string]interface{})
	id := int64(commodity["id"].(float64))
	assert.Equal(t, "10", commodity["price"])

	rec = h.do(http.MethodGet, fmt.Sprintf("/products/%d", id), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Bowl", got["title"])
	assert.NotContains(t, got, "original_price")
	cats := got["categories"].([]interface{})
	require.Len(t, cats, 1)
	assert.Equal(t, float64(1), cats[0].(map[string]interface{})["id"])

	rec = h.do(http.MethodGet, fmt.Sprintf("/search/%d", id), h.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "original_price")

	rec = h.do(http.MethodDelete, fmt.Sprintf("/admin/delete/%d", id), h.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Commodity deleted"}`, rec.Body.String())

	rec = h.do(http.MethodGet, fmt.Sprintf("/products/%d", id), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"found":false,"message":"Commodity not found"}`, rec.Body.String())

	rec = h.do(http.MethodDelete, fmt.Sprintf("/admin/delete/%d", id), h.admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["error"])
}

func TestTitleSearchScenario(t *testing.T) {
	h := newHarness(t)
	for _, title := range []string{"Glass Jar", "Jar Lid", "Big jar", "Spoon"} {
		h.createCommodity(title, 1)
	}

	rec := h.do(http.MethodGet, "/search/title/t?title=jar&limit=2", h.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode(t, rec)
	assert.Equal(t, float64(1), first["page"])
	assert.Equal(t, float64(3), first["totalCount"])
	assert.Equal(t, float64(2), first["totalPages"])
	rows := first["rows"].([]interface{})
	require.Len(t, rows, 2)
	// title search never carries admin fields
	assert.NotContains(t, rows[0], "original_price")

	rec = h.do(http.MethodGet, "/search/title/t?title=jar&limit=2&page=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["rows"].([]interface{}), 1)

	rec = h.do(http.MethodGet, "/search/title/t?title=%20%20", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["found"])
}

func TestListingShapes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"page":1,"totalCount":0,"rows":[],"totalPages":0}`, rec.Body.String())

	h.createCommodity("Plate", 1, 2)
	h.createCommodity("Cup", 2)

	rec = h.do(http.MethodGet, "/?page=abc&limit=-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode(t, rec)
	assert.Equal(t, float64(2), all["totalCount"])
	for _, row := range all["rows"].([]interface{}) {
		assert.NotContains(t, row, "original_price")
	}

	rec = h.do(http.MethodGet, "/", h.clerk, "")
	for _, row := range decode(t, rec)["rows"].([]interface{}) {
		assert.NotContains(t, row, "original_price")
	}

	rec = h.do(http.MethodGet, "/", h.admin, "")
	for _, row := range decode(t, rec)["rows"].([]interface{}) {
		assert.Contains(t, row, "original_price")
		assert.Contains(t, row, "created_at")
	}

	rec = h.do(http.MethodGet, "/search/assort/2?limit=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	byCat := decode(t, rec)
	assert.Equal(t, float64(2), byCat["totalCount"])
	assert.Equal(t, float64(2), byCat["totalPages"])
	assert.Len(t, byCat["rows"].([]interface{}), 1)

	rec = h.do(http.MethodGet, "/search/assort/1", "", "")
	assert.Equal(t, float64(1), decode(t, rec)["totalCount"])

	rec = h.do(http.MethodGet, "/?page=4611686018427387905&limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"page":4611686018427387905,"totalCount":2,"rows":[],"totalPages":1}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/search/assort/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesAreMasked(t *testing.T) {
	h := newHarness(t)
	id := h.createCommodity("Pan", 1)

	unknown := h.do(http.MethodPost, "/admin/nope", "", "")
	require.Equal(t, http.StatusNotFound, unknown.Code)
	assert.JSONEq(t, maskedBody, unknown.Body.String())

	body := `{"title":"Pan","price":1,"original_price":1,"stock":1,"categories":[1]}`
	for _, token := range []string{"", h.clerk, "garbage"} {
		for _, rec := range []*httptest.ResponseRecorder{
			h.do(http.MethodPost, "/admin/create", token, body),
			h.do(http.MethodPut, fmt.Sprintf("/admin/update/%d", id), token, body),
			h.do(http.MethodDelete, fmt.Sprintf("/admin/delete/%d", id), token, ""),
			h.do(http.MethodGet, "/admin/export", token, ""),
			h.do(http.MethodPost, "/media/upload", token, ""),
		} {
			assert.Equal(t, unknown.Code, rec.Code)
			assert.Equal(t, unknown.Body.String(), rec.Body.String())
		}
	}

	rec := h.do(http.MethodGet, fmt.Sprintf("/products/%d", id), "", "")
	assert.Equal(t, "Pan", decode(t, rec)["title"])
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/admin/create", h.admin, `{"title":"Bowl"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", out["error"])
	assert.Contains(t, out["details"], "price")

	rec = h.do(http.MethodPost, "/admin/create", h.admin, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/admin/create", h.admin,
		`{"title":"Bowl","price":"10.00","original_price":"5.00","stock":1,"categories":[1,999]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown category", decode(t, rec)["message"])

	rec = h.do(http.MethodPost, "/admin/create", h.admin,
		`{"title":"Promo","price":10,"original_price":5,"stock":1,"is_on_promotion":true,"categories":[1]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	out = decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", out["error"])
	assert.Contains(t, out["details"], "promotion_price")

	var n int64
	require.NoError(t, h.app.DB().Model(&domain.Commodity{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	id := h.createCommodity("Pot", 1)

	rec := h.do(http.MethodPut, fmt.Sprintf("/admin/update/%d", id), h.admin,
		`{"title":"Stock Pot","price":"12.50","original_price":"6","stock":3,"categories":[2,3],"is_on_promotion":false,"promotion_price":9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	commodity := out["commodity"].(map[string]interface{})
	assert.Equal(t, "Stock Pot", commodity["title"])
	assert.Equal(t, "12.5", commodity["price"])
	assert.Nil(t, commodity["promotion_price"])
	assert.Len(t, commodity["categories"], 2)

	rec = h.do(http.MethodPut, "/admin/update/9999", h.admin,
		`{"title":"Ghost","price":1,"original_price":1,"stock":1,"categories":[1]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/login", "", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(http.MethodPost, "/admin/login", "", `{"username":"nobody","password":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(http.MethodPost, "/login", "", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/login", h.admin, "").Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/admin/login", h.admin, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/login", h.clerk, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/login", "", "").Code)

	rec = h.do(http.MethodPost, "/logout", h.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestMediaUploadAndServe(t *testing.T) {
	h := newHarness(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)

	upload := func(filename string, data []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/media/upload", &body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		req.AddCookie(&http.Cookie{Name: "authToken", Value: h.admin})
		rec := httptest.NewRecorder()
		h.srv.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("shot.png", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	name := out["fileName"].(string)
	assert.Equal(t, "media/images/"+name, out["filePath"])

	rec = h.do(http.MethodGet, "/media/images/"+name, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes())

	rec = upload("notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FILE", decode(t, rec)["error"])
	rec = upload("huge.png", append(png, bytes.Repeat([]byte{1}, 2048)...))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	tooLarge := decode(t, rec)
	assert.Equal(t, "FILE_TOO_LARGE", tooLarge["error"])
	assert.Equal(t, "Image exceeds the upload size limit", tooLarge["message"])

	rec = h.do(http.MethodGet, "/media/images/missing.png", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = h.do(http.MethodGet, "/media/images/..%2Fshop.db", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportAndMisc(t *testing.T) {
	h := newHarness(t)
	h.createCommodity("Ladle", 1, 2)

	rec := h.do(http.MethodGet, "/admin/export", h.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Body.String(), "Ladle")

	rec = h.do(http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := []map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.NotEmpty(t, cats)
	assert.Equal(t, "Kitchen", cats[0]["name"])

	rec = h.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
