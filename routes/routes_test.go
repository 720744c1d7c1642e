package routes

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabl/internal/handlers"
	"tabl/internal/identity"
	"tabl/internal/models"
	"tabl/internal/repositories/remote"
	"tabl/internal/utils"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
	"tabl/pkg/storage"
	"tabl/pkg/websocket"
)

const (
	adminToken = "u-admin:admin@tabl.app"
	bobToken   = "u-bob:bob@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	router *gin.Engine
	docs   *docstore.MemoryStore
	blobs  *storage.MemoryStorage
}

const testUploadLimit = 1 << 20

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.New(io.Discard, logger.ErrorLevel)
	docs := docstore.NewMemoryStore()
	blobs := storage.NewMemoryStorage("https://cdn.test")
	ident := identity.ContextProvider{}
	policy := identity.AdminPolicy{Emails: []string{"admin@tabl.app"}}

	clubs := remote.NewVenueRepository(docs, log)
	h := &Handlers{
		Health:    handlers.NewHealthHandler("test"),
		Clubs:     handlers.NewClubHandler(clubs, log),
		Reviews:   handlers.NewReviewHandler(clubs, remote.NewReviewRepository(docs, ident, log), policy, log),
		Photos:    handlers.NewPhotoHandler(clubs, remote.NewPhotoRepository(docs, blobs, ident, time.Hour, log), testUploadLimit, utils.DefaultMaxPhotoPixels, log),
		Favorites: handlers.NewFavoritesHandler(docs, clubs, websocket.NewUpgrader(websocket.Config{AllowedOrigins: []string{"*"}}, log), log),
		Profile:   handlers.NewProfileHandler(remote.NewUserRepository(docs, ident, log), policy),
	}

	r := gin.New()
	SetupRoutes(r, h, identity.InsecureVerifier{}, policy, log)
	return &testServer{router: r, docs: docs, blobs: blobs}
}

func (s *testServer) do(t *testing.T, method, target, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) createClub(t *testing.T, name string) string {
	t.Helper()

	code, env := s.do(t, http.MethodPost, "/api/v1/clubs", adminToken, map[string]interface{}{
		"name": name, "link": "bijouboston.com", "latitude": 42.35, "longitude": -71.06,
	})
	require.Equal(t, http.StatusCreated, code)

	var club struct {
		ID             string `json:"id"`
		ReservationURL string `json:"reservation_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &club))
	require.NotEmpty(t, club.ID)
	assert.Equal(t, "https://bijouboston.com", club.ReservationURL)
	return club.ID
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestClubsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/v1/clubs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestPlacesNotMountedWithoutProvider(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodGet, "/api/v1/places/search?q=bijou", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestClubLifecycle(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/v1/clubs", bobToken, map[string]interface{}{"name": "Bijou"})
	assert.Equal(t, http.StatusForbidden, code)

	id := s.createClub(t, "Bijou")

	code, env := s.do(t, http.MethodPut, "/api/v1/clubs/"+id, adminToken, map[string]interface{}{
		"name": "Bijou Nightclub", "latitude": 42.35, "longitude": -71.06,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Bijou Nightclub")

	code, env = s.do(t, http.MethodGet, "/api/v1/clubs", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	var clubs []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &clubs))
	require.Len(t, clubs, 1)
	assert.Equal(t, "Bijou Nightclub", clubs[0]["name"])

	code, _ = s.do(t, http.MethodPut, "/api/v1/clubs/"+id, adminToken, map[string]interface{}{
		"name": "Bijou", "latitude": 123.0,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/clubs/"+id, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/clubs/"+id, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReviewsAndAverageRating(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")

	averageOf := func() map[string]interface{} {
		code, env := s.do(t, http.MethodGet, "/api/v1/clubs/"+id+"/reviews", bobToken, nil)
		require.Equal(t, http.StatusOK, code)
		var body struct {
			Reviews       []map[string]interface{} `json:"reviews"`
			AverageRating map[string]interface{}   `json:"average_rating"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		return body.AverageRating
	}

	assert.Equal(t, "N/A", averageOf()["display"])

	code, env := s.do(t, http.MethodPost, "/api/v1/clubs/"+id+"/reviews", bobToken, map[string]interface{}{
		"title": "Great", "body": "Loud", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, code)
	var review struct {
		ID       string `json:"id"`
		Reviewer string `json:"reviewer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &review))
	assert.Equal(t, "bob@example.com", review.Reviewer)

	code, _ = s.do(t, http.MethodPost, "/api/v1/clubs/"+id+"/reviews", adminToken, map[string]interface{}{"rating": 4})
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/clubs/"+id+"/reviews", bobToken, map[string]interface{}{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	assert.Equal(t, "4.5", averageOf()["display"])

	code, _ = s.do(t, http.MethodPut, "/api/v1/clubs/"+id+"/reviews/"+review.ID, "u-eve:eve@example.com", map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/clubs/"+id+"/reviews/"+review.ID, bobToken, nil)
	assert.Equal(t, http.StatusNoContent, code)

	assert.Equal(t, "4.0", averageOf()["display"])
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, clubID string, data []byte, token string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "dance.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, form.WriteField("description", "dance floor"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clubs/"+clubID+"/photos", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPhotoUpload(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")

	code, env := s.serve(t, uploadRequest(t, id, smallPNG(t), bobToken))
	require.Equal(t, http.StatusCreated, code)

	var photo struct {
		ID       string `json:"id"`
		ImageURL string `json:"image_url"`
		Reviewer string `json:"reviewer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &photo))
	assert.Equal(t, "https://cdn.test/"+id+"/"+photo.ID, photo.ImageURL)
	assert.Equal(t, "bob@example.com", photo.Reviewer)

	_, contentType, ok := s.blobs.Object(id + "/" + photo.ID)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", contentType)

	code, env = s.do(t, http.MethodGet, "/api/v1/clubs/"+id+"/photos", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "dance floor")
}

func TestFavoritesToggle(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")
	s.createClub(t, "Royale")

	toggle := func() bool {
		code, env := s.do(t, http.MethodPost, "/api/v1/me/favorites/"+id+"/toggle", bobToken, nil)
		require.Equal(t, http.StatusOK, code)
		var body struct {
			Favorite bool `json:"favorite"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		return body.Favorite
	}

	assert.True(t, toggle())

	code, env := s.do(t, http.MethodGet, "/api/v1/me/favorites?expand=clubs", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	var favs struct {
		ClubIDs []string                 `json:"club_ids"`
		Clubs   []map[string]interface{} `json:"clubs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &favs))
	assert.Equal(t, []string{id}, favs.ClubIDs)
	require.Len(t, favs.Clubs, 1)
	assert.Equal(t, "Bijou", favs.Clubs[0]["name"])

	assert.False(t, toggle())

	code, _ = s.do(t, http.MethodPost, "/api/v1/me/favorites/missing/toggle", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProfileRegistration(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/me/profile", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "admin@tabl.app")

	code, env = s.do(t, http.MethodGet, "/api/v1/me/profile", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "admin@tabl.app", profile["email"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/me/profile", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPhotoUploadRejectsOversizedBody(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")

	code, env := s.serve(t, uploadRequest(t, id, bytes.Repeat([]byte{0xAB}, 2*testUploadLimit), bobToken))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)
	assert.Zero(t, s.blobs.Len())
}

func TestPhotoUploadRejectsOversizedCanvas(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")

	// Rewrite the IHDR dimensions to 20000x20000 and fix up the chunk CRC.
	bomb := smallPNG(t)
	binary.BigEndian.PutUint32(bomb[16:20], 20000)
	binary.BigEndian.PutUint32(bomb[20:24], 20000)
	binary.BigEndian.PutUint32(bomb[29:33], crc32.ChecksumIEEE(bomb[12:29]))

	code, env := s.serve(t, uploadRequest(t, id, bomb, bobToken))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "IMAGE_TOO_LARGE", env.Error.Code)
	assert.Zero(t, s.blobs.Len())
}

func TestAdminLookalikeEmailCannotEditClubs(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")
	const fan = "u-fan:badminton.fan@gmail.com"

	code, _ := s.do(t, http.MethodDelete, "/api/v1/clubs/"+id, fan, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/clubs", "u-ca:club-admin@gmail.com", map[string]interface{}{"name": "Fake"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/clubs/"+id, fan, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(t, http.MethodPost, "/api/v1/me/profile", fan, nil)
	require.Equal(t, http.StatusOK, code)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "regular", profile["user_type"])
}

func TestUserWithoutEmailCannotEditAuthorlessReview(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")

	reviewID, err := s.docs.Create(context.Background(), models.ReviewsCollection(id), map[string]interface{}{
		"title": "legacy", "rating": int64(3),
	})
	require.NoError(t, err)

	const phoneUser = "u-phone:"
	code, _ := s.do(t, http.MethodPut, "/api/v1/clubs/"+id+"/reviews/"+reviewID, phoneUser, map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/clubs/"+id+"/reviews/"+reviewID, phoneUser, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/clubs/"+id+"/reviews/"+reviewID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestFavoritesStreamPushesToggles(t *testing.T) {
	s := newTestServer(t)
	id := s.createClub(t, "Bijou")

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/me/favorites/stream?access_token=" + bobToken
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	type pushed struct {
		Type string   `json:"type"`
		Data []string `json:"data"`
	}
	next := func() pushed {
		var msg pushed
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	initial := next()
	assert.Equal(t, "favorites", initial.Type)
	assert.Empty(t, initial.Data)

	code, _ := s.do(t, http.MethodPost, "/api/v1/me/favorites/"+id+"/toggle", bobToken, nil)
	require.Equal(t, http.StatusOK, code)

	msg := next()
	assert.Equal(t, "favorites", msg.Type)
	assert.Equal(t, []string{id}, msg.Data)
}

func TestFavoritesStreamRequiresToken(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	_, resp, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/me/favorites/stream", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
