package handler

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"qrportal/internal/middleware"
	"qrportal/internal/model"
	"qrportal/internal/render"
	"qrportal/internal/shortcode"
	"qrportal/internal/store"
	"qrportal/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type qrJSON struct {
	ID          uint   `json:"id"`
	Alias       string `json:"alias"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	ContentType string `json:"content_type"`
	TargetURL   string `json:"target_url"`
	ScanLimit   int64  `json:"scan_limit"`
	ShortLink   string `json:"short_link"`
}

func qrPath(id uint, suffix string) string {
	return "/api/qrcodes/" + strconv.Itoa(int(id)) + suffix
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	env := setupTest(t)

	w := env.do(http.MethodPost, "/auth/register", "", RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/auth/register", "", RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/auth/login", "", LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/auth/login", "", LoginRequest{Username: "alice", Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp AuthResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	w = env.do(http.MethodGet, "/api/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.NotContains(t, w.Body.String(), "PasswordHash")

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/me", "", nil).Code)
}

func TestCreateQRCode(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	token := env.tokenFor(t, owner)

	w := env.do(http.MethodPost, "/api/qrcodes", token, CreateQRCodeRequest{Alias: "menu", Name: "Menu", TargetURL: "example.com/menu"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created qrJSON
	decode(t, w, &created)
	assert.Equal(t, "menu", created.Alias)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, "link", created.ContentType)
	assert.Equal(t, testBaseURL+"/r/menu", created.ShortLink)
	assert.NotEmpty(t, env.reload(t, created.ID).ImagePath)

	w = env.do(http.MethodPost, "/api/qrcodes", token, CreateQRCodeRequest{TargetURL: "example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	var generated qrJSON
	decode(t, w, &generated)
	assert.Len(t, generated.Alias, 7)

	w = env.do(http.MethodGet, "/api/qrcodes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []qrJSON
	decode(t, w, &list)
	assert.Len(t, list, 2)
}

func TestCreateQRCode_Validation(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	token := env.tokenFor(t, owner)
	testutil.CreateQR(t, env.db, &model.QRCode{Alias: "taken", OwnerID: owner.ID})

	tests := []struct {
		name string
		req  CreateQRCodeRequest
		want int
	}{
		{name: "alias taken", req: CreateQRCodeRequest{Alias: "taken"}, want: http.StatusConflict},
		{name: "alias with slash", req: CreateQRCodeRequest{Alias: "a/b"}, want: http.StatusBadRequest},
		{name: "unknown content type", req: CreateQRCodeRequest{ContentType: "form"}, want: http.StatusBadRequest},
		{name: "negative limit", req: CreateQRCodeRequest{ScanLimit: -1}, want: http.StatusBadRequest},
		{name: "end before start", req: CreateQRCodeRequest{StartAt: hoursFromNow(2), EndAt: hoursFromNow(1)}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(http.MethodPost, "/api/qrcodes", token, tt.req).Code)
		})
	}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/qrcodes", "", CreateQRCodeRequest{}).Code)
}

// aliasBlindStore 模拟两个请求同时通过别名检查的情况
type aliasBlindStore struct {
	store.RecordStore
}

func (aliasBlindStore) AliasExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestCreateQRCode_AliasRaceReturnsConflict(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	token := env.tokenFor(t, owner)
	testutil.CreateQR(t, env.db, &model.QRCode{Alias: "taken", OwnerID: owner.ID})

	logger := zap.NewNop().Sugar()
	generator := shortcode.NewGenerator(env.store.AliasExists, logger)
	t.Cleanup(generator.Stop)
	h := NewQRCodeHandler(aliasBlindStore{env.store}, generator, nil, render.New(render.Options{BaseURL: testBaseURL}), nil, logger)

	router := gin.New()
	router.POST("/api/qrcodes", middleware.AuthMiddleware(env.tokens), h.CreateQRCode)
	env.router = router

	w := env.do(http.MethodPost, "/api/qrcodes", token, CreateQRCodeRequest{Alias: "taken", TargetURL: "example.com"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.JSONEq(t, `{"error":"别名已被使用"}`, w.Body.String())
}

func TestCreateQRCode_DeletedAliasNotReused(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	token := env.tokenFor(t, owner)

	w := env.do(http.MethodPost, "/api/qrcodes", token, CreateQRCodeRequest{Alias: "once", TargetURL: "example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created qrJSON
	decode(t, w, &created)

	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, qrPath(created.ID, ""), token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/r/once", "", nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/qrcodes", token, CreateQRCodeRequest{Alias: "once"}).Code)
}

func TestUpdateQRCode(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	other := testutil.CreateUser(t, env.db, "other", model.RoleUser, false)
	q := testutil.CreateQR(t, env.db, &model.QRCode{Alias: "menu", OwnerID: owner.ID, TargetURL: "example.com/old", ScanCount: 4})

	body := map[string]interface{}{
		"alias":      "hijack",
		"target_url": "example.com/new",
		"scan_limit": 10,
		"scan_count": 0,
	}
	w := env.do(http.MethodPut, qrPath(q.ID, ""), env.tokenFor(t, owner), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := env.reload(t, q.ID)
	assert.Equal(t, "menu", updated.Alias)
	assert.Equal(t, "example.com/new", updated.TargetURL)
	assert.Equal(t, int64(10), updated.ScanLimit)
	assert.Equal(t, int64(4), updated.ScanCount)

	w = env.do(http.MethodGet, "/r/menu", "", nil)
	assert.Equal(t, "https://example.com/new", w.Header().Get("Location"))

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, qrPath(q.ID, ""), env.tokenFor(t, other), body).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, qrPath(999, ""), env.tokenFor(t, owner), body).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/api/qrcodes/abc", env.tokenFor(t, owner), body).Code)
}

func TestUpdateQRCode_Schedule(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	token := env.tokenFor(t, owner)
	q := testutil.CreateQR(t, env.db, &model.QRCode{Alias: "later", OwnerID: owner.ID, TargetURL: "example.com", StartAt: hoursFromNow(48)})

	w := env.do(http.MethodPut, qrPath(q.ID, ""), token, UpdateQRCodeRequest{EndAt: hoursFromNow(1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/r/later", "", nil).Code)
	w = env.do(http.MethodPut, qrPath(q.ID, ""), token, UpdateQRCodeRequest{ClearSchedule: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.reload(t, q.ID).StartAt)
	assert.Equal(t, http.StatusFound, env.do(http.MethodGet, "/r/later", "", nil).Code)
}

func TestToggleQRCode(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	token := env.tokenFor(t, owner)
	q := testutil.CreateQR(t, env.db, &model.QRCode{Alias: "promo", OwnerID: owner.ID, TargetURL: "example.com"})

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, qrPath(q.ID, "/toggle"), token, nil).Code)
	assert.Equal(t, model.StatusPaused, env.reload(t, q.ID).Status)
	assert.Equal(t, http.StatusGone, env.do(http.MethodGet, "/r/promo", "", nil).Code)

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, qrPath(q.ID, "/toggle"), token, nil).Code)
	assert.Equal(t, model.StatusActive, env.reload(t, q.ID).Status)
	assert.Equal(t, http.StatusFound, env.do(http.MethodGet, "/r/promo", "", nil).Code)
}

func TestAdmin_ForcePauseLocksOwner(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	admin := testutil.CreateUser(t, env.db, "root", model.RoleAdmin, false)
	q := testutil.CreateQR(t, env.db, &model.QRCode{Alias: "promo", OwnerID: owner.ID, TargetURL: "example.com"})
	statusPath := "/api/admin/qrcodes/" + strconv.Itoa(int(q.ID)) + "/status"

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, statusPath, env.tokenFor(t, owner), SetStatusRequest{Status: model.StatusPaused}).Code)

	w := env.do(http.MethodPut, statusPath, env.tokenFor(t, admin), SetStatusRequest{Status: model.StatusPaused})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.reload(t, q.ID).AdminLocked)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, qrPath(q.ID, "/toggle"), env.tokenFor(t, owner), nil).Code)
	assert.Equal(t, http.StatusGone, env.do(http.MethodGet, "/r/promo", "", nil).Code)

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, statusPath, env.tokenFor(t, admin), SetStatusRequest{Status: model.StatusActive}).Code)
	assert.False(t, env.reload(t, q.ID).AdminLocked)
	assert.Equal(t, http.StatusFound, env.do(http.MethodGet, "/r/promo", "", nil).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, statusPath, env.tokenFor(t, admin), SetStatusRequest{Status: "archived"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/admin/qrcodes/999/status", env.tokenFor(t, admin), SetStatusRequest{Status: model.StatusPaused}).Code)
}

func TestAdmin_PauseUser(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	admin := testutil.CreateUser(t, env.db, "root", model.RoleAdmin, false)
	testutil.CreateQR(t, env.db, &model.QRCode{Alias: "promo", OwnerID: owner.ID, TargetURL: "example.com"})
	path := "/api/admin/users/" + strconv.Itoa(int(owner.ID)) + "/pause"

	paused, resumed := true, false
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, path, env.tokenFor(t, admin), PauseUserRequest{Paused: &paused}).Code)
	w := env.do(http.MethodGet, "/r/promo", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "User Paused by Admin")

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, path, env.tokenFor(t, admin), PauseUserRequest{Paused: &resumed}).Code)
	assert.Equal(t, http.StatusFound, env.do(http.MethodGet, "/r/promo", "", nil).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, path, env.tokenFor(t, admin), map[string]interface{}{}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/admin/users/999/pause", env.tokenFor(t, admin), PauseUserRequest{Paused: &paused}).Code)
}

func TestAdmin_DeleteAndStats(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, true)
	admin := testutil.CreateUser(t, env.db, "root", model.RoleAdmin, false)
	testutil.CreateQR(t, env.db, &model.QRCode{Alias: "a", OwnerID: owner.ID, ScanCount: 5})
	b := testutil.CreateQR(t, env.db, &model.QRCode{Alias: "b", OwnerID: owner.ID, ScanCount: 2, Status: model.StatusPaused})

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/admin/stats", env.tokenFor(t, owner), nil).Code)

	w := env.do(http.MethodGet, "/api/admin/stats", env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats GlobalStats
	decode(t, w, &stats)
	assert.Equal(t, GlobalStats{TotalQRCodes: 2, ActiveQRCodes: 1, PausedQRCodes: 1, TotalScans: 7, TotalUsers: 2, PausedUsers: 1}, stats)

	deletePath := "/api/admin/qrcodes/" + strconv.Itoa(int(b.ID))
	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, deletePath, env.tokenFor(t, admin), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, deletePath, env.tokenFor(t, admin), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/r/b", "", nil).Code)
}

func TestGetQRStats_DatabaseFallback(t *testing.T) {
	env := setupTest(t)
	owner := testutil.CreateUser(t, env.db, "owner", model.RoleUser, false)
	q := testutil.CreateQR(t, env.db, &model.QRCode{Alias: "promo", OwnerID: owner.ID, TargetURL: "example.com"})
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusFound, env.do(http.MethodGet, "/r/promo", "", nil).Code)
	}

	w := env.do(http.MethodGet, qrPath(q.ID, "/stats?days=3"), env.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp QRStatsResponse
	decode(t, w, &resp)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, "database", resp.Source)
	require.Len(t, resp.Daily, 3)
	assert.Equal(t, int64(3), resp.Daily[2].Count)
}
