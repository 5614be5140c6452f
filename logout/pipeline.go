// Package logout implements the end-session request pipeline: Parse →
// Extract → Validate → Handle → Apply, with the same hook discipline as the
// token pipelines.
package logout

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/legit-games/oidc-core"
	"github.com/legit-games/oidc-core/errors"
	"github.com/legit-games/oidc-core/hooks"
	"github.com/legit-games/oidc-core/logx"
)

// Pipeline processes end-session requests.
type Pipeline struct {
	provider            hooks.Provider
	logger              logx.Logger
	appCanDisplayErrors bool
}

// New builds a pipeline. A nil provider gets the no-op provider; a nil
// logger the process logger.
func New(provider hooks.Provider, logger logx.Logger, appCanDisplayErrors bool) *Pipeline {
	if provider == nil {
		provider = hooks.NopProvider{}
	}
	if logger == nil {
		logger = logx.L()
	}
	return &Pipeline{provider: provider, logger: logger, appCanDisplayErrors: appCanDisplayErrors}
}

type requestKey struct{}

// LogoutRequestFromContext returns the logout request stashed by the Extract
// stage, if any.
func LogoutRequestFromContext(ctx context.Context) (*oidc.LogoutRequest, bool) {
	req, ok := ctx.Value(requestKey{}).(*oidc.LogoutRequest)
	return req, ok
}

// Process runs the state machine for one end-session request. It reports
// whether the request was handled; false means the host should fall through
// to its next handler.
func (p *Pipeline) Process(w http.ResponseWriter, r *http.Request) (bool, error) {
	ctx := r.Context()
	response := oidc.NewLogoutResponse()

	values, err := p.parse(r)
	if err != nil {
		response.Error = errors.Reject("invalid_request", errors.Descriptions[errors.ErrInvalidRequest], "")
		return p.apply(ctx, w, r, nil, response)
	}

	logoutReq := oidc.ParseLogoutRequest(values)

	// Extract
	c := &hooks.LogoutRequestContext{HTTPRequest: r, Writer: w, Request: logoutReq}
	if err := p.provider.ExtractLogoutRequest(ctx, c); err != nil {
		return false, err
	}
	// The extracted request lands in request-scope state before the outcome
	// is classified, so downstream observers see it even on rejection.
	logoutReq = c.Request
	ctx = context.WithValue(ctx, requestKey{}, logoutReq)
	r = r.WithContext(ctx)
	if done, handled := p.classifyRequestStage(c, response); done {
		if response.Error != nil {
			return p.apply(ctx, w, r, logoutReq, response)
		}
		return handled, nil
	}

	// Validate
	c = &hooks.LogoutRequestContext{HTTPRequest: r, Writer: w, Request: logoutReq}
	if err := p.provider.ValidateLogoutRequest(ctx, c); err != nil {
		return false, err
	}
	if done, handled := p.classifyRequestStage(c, response); done {
		if response.Error != nil {
			return p.apply(ctx, w, r, logoutReq, response)
		}
		return handled, nil
	}

	// Handle
	c = &hooks.LogoutRequestContext{HTTPRequest: r, Writer: w, Request: logoutReq}
	if err := p.provider.HandleLogoutRequest(ctx, c); err != nil {
		return false, err
	}
	if done, handled := p.classifyRequestStage(c, response); done {
		if response.Error != nil {
			return p.apply(ctx, w, r, logoutReq, response)
		}
		return handled, nil
	}

	response.PostLogoutRedirectURI = logoutReq.PostLogoutRedirectURI
	if logoutReq.State != "" {
		response.SetParameter("state", logoutReq.State)
	}
	return p.apply(ctx, w, r, logoutReq, response)
}

// classifyRequestStage folds one Extract/Validate/Handle outcome. done=false
// means proceed to the next stage; otherwise handled carries the return
// value unless response.Error was set, in which case the caller jumps to
// Apply.
func (p *Pipeline) classifyRequestStage(c *hooks.LogoutRequestContext, response *oidc.LogoutResponse) (done, handled bool) {
	switch c.Action() {
	case hooks.ActionHandled:
		return true, true
	case hooks.ActionSkipped:
		return true, false
	case hooks.ActionRejected:
		response.Error = c.Rejection()
		return true, false
	default:
		return false, false
	}
}

// parse accepts GET query parameters or a POST form. Anything else is an
// invalid request.
func (p *Pipeline) parse(r *http.Request) (url.Values, error) {
	switch r.Method {
	case http.MethodGet:
		return r.URL.Query(), nil
	case http.MethodPost:
		ct := strings.ToLower(r.Header.Get("Content-Type"))
		if !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			return nil, errors.ErrInvalidRequest
		}
		if err := r.ParseForm(); err != nil {
			return nil, errors.ErrInvalidRequest
		}
		return r.PostForm, nil
	default:
		return nil, errors.ErrInvalidRequest
	}
}

// apply runs the terminal stage: the ApplyLogoutResponse hook first, then
// the built-in error or redirect behavior.
func (p *Pipeline) apply(ctx context.Context, w http.ResponseWriter, r *http.Request, req *oidc.LogoutRequest, response *oidc.LogoutResponse) (bool, error) {
	c := &hooks.LogoutResponseContext{HTTPRequest: r, Writer: w, Request: req, Response: response}
	if err := p.provider.ApplyLogoutResponse(ctx, c); err != nil {
		return false, err
	}
	switch c.Action() {
	case hooks.ActionHandled:
		return true, nil
	case hooks.ActionSkipped:
		return false, nil
	case hooks.ActionRejected:
		response.Error = c.Rejection()
	}

	if response.Error != nil {
		if p.appCanDisplayErrors {
			w.WriteHeader(http.StatusBadRequest)
			return false, nil
		}
		p.writeErrorPage(w, response.Error)
		return true, nil
	}

	if response.PostLogoutRedirectURI == "" {
		return true, nil
	}

	q := url.Values{}
	for name, value := range response.Parameters {
		if name == "post_logout_redirect_uri" {
			continue
		}
		s, ok := value.(string)
		if !ok {
			p.logger.Warn("skipping non-string logout response parameter", "name", name)
			continue
		}
		q.Set(name, s)
	}
	location := response.PostLogoutRedirectURI
	if encoded := q.Encode(); encoded != "" {
		if strings.Contains(location, "?") {
			location += "&" + encoded
		} else {
			location += "?" + encoded
		}
	}
	http.Redirect(w, r, location, http.StatusFound)
	return true, nil
}

func (p *Pipeline) writeErrorPage(w http.ResponseWriter, rejection *errors.Rejection) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>Logout error</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(rejection.Err), html.EscapeString(rejection.Description))
}
