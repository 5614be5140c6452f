package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"

	"github.com/legit-games/oidc-core/manage"
)

func newEndSessionServer(t *testing.T) *httpexpect.Expect {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := manage.NewManager(manage.NewConfig([]byte("test-secret")))
	srv := httptest.NewServer(NewGinEngine(m))
	t.Cleanup(srv.Close)
	return httpexpect.Default(t, srv.URL)
}

func TestEndSession_RedirectCarriesState(t *testing.T) {
	e := newEndSessionServer(t)
	resp := e.GET("/oauth/endsession").
		WithQuery("post_logout_redirect_uri", "https://rp.example/done").
		WithQuery("state", "abc").
		WithRedirectPolicy(httpexpect.DontFollowRedirects).
		Expect()
	resp.Status(http.StatusFound)
	resp.Header("Location").Contains("state=abc").NotContains("post_logout_redirect_uri")
}

func TestEndSession_UnsupportedMethod(t *testing.T) {
	e := newEndSessionServer(t)
	resp := e.PUT("/oauth/endsession").
		WithRedirectPolicy(httpexpect.DontFollowRedirects).
		Expect()
	resp.Status(http.StatusBadRequest)
	resp.Body().Contains("invalid_request")
	resp.Header("Location").IsEmpty()
}

func TestEndSession_NoRedirectURI(t *testing.T) {
	e := newEndSessionServer(t)
	resp := e.GET("/oauth/endsession").
		WithRedirectPolicy(httpexpect.DontFollowRedirects).
		Expect()
	resp.Status(http.StatusOK)
	resp.Header("Location").IsEmpty()
}
