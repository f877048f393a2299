package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"petclinic/internal/adapters/auth/authsvc"
	"petclinic/internal/adapters/auth/jwtverifier"
	"petclinic/internal/gateway"
	"petclinic/internal/middleware"
	"petclinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder es un downstream falso que anota lo que recibe.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string][]byte
	reply  func(w http.ResponseWriter, r *http.Request)
}

func newDownstream(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*recorder, string) {
	t.Helper()
	rec := &recorder{reply: reply, bodies: map[string][]byte{}}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		key := r.Method + " " + r.URL.RequestURI()
		rec.calls = append(rec.calls, key)
		rec.bodies[key] = b
		rec.mu.Unlock()
		rec.reply(w, r)
	}))
	t.Cleanup(ts.Close)
	return rec, ts.URL
}

func (rec *recorder) seen() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]string(nil), rec.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newGateway(t *testing.T, cfg gateway.Config) *httptest.Server {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	g, err := gateway.New(cfg, nil)
	require.NoError(t, err)
	r := chi.NewRouter()
	g.RegisterRoutes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

// doReq con headers de modo dev; userID vacío => sin identidad.
func doReq(t *testing.T, base, method, path, userID, roles string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, base+gateway.BasePath+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.DebugUserHeader, userID)
		req.Header.Set(middleware.DebugRolesHeader, roles)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestDefaultRoutes_Unique(t *testing.T) {
	seen := map[string]bool{}
	for _, rt := range gateway.DefaultRoutes() {
		key := rt.Method + " " + rt.Path
		assert.False(t, seen[key], "duplicated route %s", key)
		seen[key] = true
		assert.NotEmpty(t, rt.Service, key)
		if rt.UserParam != "" {
			assert.Contains(t, rt.Path, "{"+rt.UserParam+"}", key)
		}
	}
}

func TestForward_PublicRouteKeepsPathAndQuery(t *testing.T) {
	rec, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"productId": "p1"})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{gateway.ServiceProducts: url}})

	st, body := doReq(t, ts.URL, http.MethodGet, "/products/p1?sort=desc", "", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "p1", body["productId"])
	assert.Equal(t, []string{"GET /products/p1?sort=desc"}, rec.seen())
}

func TestForward_PetMutationsScopedToOwner(t *testing.T) {
	rec, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"petId": "p-a"})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{gateway.ServiceCustomers: url}})
	pet := map[string]any{"name": "Max", "petTypeId": "dog"}

	st, _ := doReq(t, ts.URL, http.MethodPut, "/pets/p-of-owner-b", "owner-a", "OWNER", pet)
	assert.Equal(t, http.StatusForbidden, st)
	st, _ = doReq(t, ts.URL, http.MethodDelete, "/pets/p-of-owner-b", "owner-a", "OWNER", nil)
	assert.Equal(t, http.StatusForbidden, st)
	st, _ = doReq(t, ts.URL, http.MethodPut, "/owners/owner-b/pets/p-of-owner-b", "owner-a", "OWNER", pet)
	assert.Equal(t, http.StatusForbidden, st)
	st, _ = doReq(t, ts.URL, http.MethodDelete, "/owners/owner-b/pets/p-of-owner-b", "owner-a", "OWNER", nil)
	assert.Equal(t, http.StatusForbidden, st)
	assert.Empty(t, rec.seen())

	st, _ = doReq(t, ts.URL, http.MethodPut, "/owners/owner-a/pets/p-a", "owner-a", "OWNER", pet)
	assert.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, http.MethodPut, "/pets/p-of-owner-b", "root", "ADMIN", pet)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, []string{"PUT /owners/owner-a/pets/p-a", "PUT /pets/p-of-owner-b"}, rec.seen())
}

func TestForward_RolesAndSelf(t *testing.T) {
	rec, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{gateway.ServiceBilling: url}})

	st, _ := doReq(t, ts.URL, http.MethodGet, "/bills", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)

	st, _ = doReq(t, ts.URL, http.MethodGet, "/bills", "u1", "OWNER", nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, _ = doReq(t, ts.URL, http.MethodGet, "/customers/u2/bills", "u1", "OWNER", nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, _ = doReq(t, ts.URL, http.MethodGet, "/customers/u1/bills", "u1", "OWNER", nil)
	assert.Equal(t, http.StatusOK, st)

	st, _ = doReq(t, ts.URL, http.MethodGet, "/customers/u2/bills", "admin", "ADMIN", nil)
	assert.Equal(t, http.StatusOK, st)

	assert.Equal(t, []string{
		"GET /bills/customer/u1/bills",
		"GET /bills/customer/u2/bills",
	}, rec.seen())
}

func TestForward_InvalidTokenWithLocalVerifier(t *testing.T) {
	_, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	signer, err := jwtverifier.New("test-secret", time.Hour)
	require.NoError(t, err)
	ts := newGateway(t, gateway.Config{
		Services: map[string]string{gateway.ServiceVets: url},
		Verifier: signer,
	})

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, ts.URL+gateway.BasePath+"/vets", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, get(""))
	assert.Equal(t, middleware.StatusInvalidToken, get("not-a-token"))

	tok, _, err := signer.Sign(auth.Claims{UserID: "v1", Roles: []string{auth.RoleVet}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(tok))
}

func TestForward_AuthServiceDownIs503(t *testing.T) {
	rec, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	verifier, err := authsvc.NewVerifier(authsvc.Config{BaseURL: deadURL, Timeout: time.Second})
	require.NoError(t, err)
	ts := newGateway(t, gateway.Config{
		Services: map[string]string{gateway.ServiceVets: url},
		Verifier: verifier,
	})

	req, err := http.NewRequest(http.MethodGet, ts.URL+gateway.BasePath+"/vets", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer some-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "auth service unavailable", body["message"])
	assert.Empty(t, rec.seen())
}

func TestForward_ErrorTranslation(t *testing.T) {
	_, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/missing"):
			writeJSON(w, http.StatusNotFound, map[string]any{"statusCode": 404, "message": "bill not found"})
		case strings.HasSuffix(r.URL.Path, "/plain"):
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, "  amount must be positive \n")
		default:
			w.WriteHeader(http.StatusConflict)
		}
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{gateway.ServiceBilling: url}})

	st, body := doReq(t, ts.URL, http.MethodGet, "/bills/missing", "a", "ADMIN", nil)
	assert.Equal(t, http.StatusNotFound, st)
	assert.Equal(t, "bill not found", body["message"])
	assert.EqualValues(t, 404, body["statusCode"])

	st, body = doReq(t, ts.URL, http.MethodGet, "/bills/plain", "a", "ADMIN", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, st)
	assert.Equal(t, "amount must be positive", body["message"])

	st, body = doReq(t, ts.URL, http.MethodGet, "/bills/other", "a", "ADMIN", nil)
	assert.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "Conflict", body["message"])
}

func TestForward_UnavailableService(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	ts := newGateway(t, gateway.Config{Services: map[string]string{gateway.ServiceBilling: url}})

	st, body := doReq(t, ts.URL, http.MethodGet, "/bills", "a", "ADMIN", nil)
	assert.Equal(t, http.StatusServiceUnavailable, st)
	assert.Contains(t, body["message"], "billing")

	st, body = doReq(t, ts.URL, http.MethodGet, "/vets", "a", "ADMIN", nil)
	assert.Equal(t, http.StatusServiceUnavailable, st)
	assert.Contains(t, body["message"], "vets")
}

func TestOwnerOverview(t *testing.T) {
	_, customers := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/pets") {
			writeJSON(w, http.StatusOK, []map[string]any{{"petId": "pet-1"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ownerId": "o1", "firstName": "Ana"})
	})
	_, billing := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/current-balance") {
			writeJSON(w, http.StatusOK, 42.5)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"billId": "b1"}})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{
		gateway.ServiceCustomers: customers,
		gateway.ServiceBilling:   billing,
	}})

	st, body := doReq(t, ts.URL, http.MethodGet, "/owners/o1/overview", "o1", "OWNER", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "Ana", body["owner"].(map[string]any)["firstName"])
	assert.Len(t, body["pets"], 1)
	assert.Len(t, body["bills"], 1)
	assert.EqualValues(t, 42.5, body["currentBalance"])

	st, _ = doReq(t, ts.URL, http.MethodGet, "/owners/o2/overview", "o1", "OWNER", nil)
	assert.Equal(t, http.StatusForbidden, st)
}

func TestVetOverview_PropagatesNotFound(t *testing.T) {
	_, vets := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "vet not found"})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{gateway.ServiceVets: vets}})

	st, body := doReq(t, ts.URL, http.MethodGet, "/vets/v9/overview", "u1", "OWNER", nil)
	assert.Equal(t, http.StatusNotFound, st)
	assert.Equal(t, "vet not found", body["message"])
}

func validRegistration() map[string]any {
	return map[string]any{
		"username":  "ana",
		"email":     "ana@test.io",
		"password":  "secret123",
		"firstName": "Ana",
		"lastName":  "Diaz",
		"telephone": "5145551234",
	}
}

func TestRegister_CreatesUserThenOwnerWithSameID(t *testing.T) {
	authRec, authURL := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, map[string]any{"userId": "x"})
	})
	custRec, custURL := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"ownerId": "x"})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{
		gateway.ServiceAuth:      authURL,
		gateway.ServiceCustomers: custURL,
	}})

	st, body := doReq(t, ts.URL, http.MethodPost, "/users/register", "", "", validRegistration())
	require.Equal(t, http.StatusCreated, st)
	assert.NotNil(t, body["user"])
	assert.NotNil(t, body["owner"])

	require.Equal(t, []string{"POST /users"}, authRec.seen())
	require.Equal(t, []string{"POST /owners"}, custRec.seen())

	var user, owner map[string]any
	require.NoError(t, json.Unmarshal(authRec.bodies["POST /users"], &user))
	require.NoError(t, json.Unmarshal(custRec.bodies["POST /owners"], &owner))
	assert.NotEmpty(t, user["userId"])
	assert.Equal(t, user["userId"], owner["ownerId"])
	assert.Equal(t, "Ana", owner["firstName"])
}

func TestRegister_RollsBackUserWhenOwnerFails(t *testing.T) {
	authRec, authURL := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"userId": "x"})
	})
	_, custURL := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "owner already exists"})
	})
	ts := newGateway(t, gateway.Config{Services: map[string]string{
		gateway.ServiceAuth:      authURL,
		gateway.ServiceCustomers: custURL,
	}})

	st, body := doReq(t, ts.URL, http.MethodPost, "/users/register", "", "", validRegistration())
	assert.Equal(t, http.StatusUnprocessableEntity, st)
	assert.Equal(t, "owner already exists", body["message"])

	calls := authRec.seen()
	require.Len(t, calls, 2)
	assert.True(t, strings.HasPrefix(calls[1], "DELETE /users/"), calls[1])
}

func TestRegister_Validation(t *testing.T) {
	ts := newGateway(t, gateway.Config{})
	in := validRegistration()
	in["telephone"] = "12"
	st, _ := doReq(t, ts.URL, http.MethodPost, "/users/register", "", "", in)
	assert.Equal(t, http.StatusBadRequest, st)
}

func TestRateLimit(t *testing.T) {
	_, url := newDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	ts := newGateway(t, gateway.Config{
		Services:       map[string]string{gateway.ServiceProducts: url},
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	})

	st, _ := doReq(t, ts.URL, http.MethodGet, "/products", "u1", "OWNER", nil)
	assert.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, http.MethodGet, "/products", "u1", "OWNER", nil)
	assert.Equal(t, http.StatusTooManyRequests, st)
	// otro usuario tiene su propio bucket
	st, _ = doReq(t, ts.URL, http.MethodGet, "/products", "u2", "OWNER", nil)
	assert.Equal(t, http.StatusOK, st)
}

func TestSwaggerDoc(t *testing.T) {
	ts := newGateway(t, gateway.Config{})
	resp, err := http.Get(ts.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "PetClinic Gateway API")
	assert.True(t, json.Valid(raw))
}
