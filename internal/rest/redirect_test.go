package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bioAffiliate/business/click"
	"bioAffiliate/business/link"
	"bioAffiliate/domain"

	"github.com/labstack/echo/v4"
)

type fakeResolver struct {
	links map[string]domain.Link
}

func (f *fakeResolver) Resolve(ctx context.Context, code string) (domain.Link, error) {
	l, ok := f.links[code]
	if !ok {
		return domain.Link{}, link.ErrNotFound
	}
	return l, nil
}

type recordedHit struct {
	link domain.Link
	meta click.Meta
}

type fakeRecorder struct {
	recorded chan recordedHit
}

func (f *fakeRecorder) RecordAsync(link domain.Link, meta click.Meta) {
	f.recorded <- recordedHit{link: link, meta: meta}
}

func doRedirect(h *RedirectHandler, code string, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)
	c.SetPath("/go/:code")
	c.SetParamNames("code")
	c.SetParamValues(code)
	_ = h.Redirect(c)
	return rec
}

func TestRedirect_KnownCode(t *testing.T) {
	resolver := &fakeResolver{links: map[string]domain.Link{
		"Ab3dEf9h": {ID: 1, PartnerID: 1, ShortCode: "Ab3dEf9h", DestinationURL: "https://example.com/microscope"},
	}}
	recorder := &fakeRecorder{recorded: make(chan recordedHit, 1)}
	h := NewRedirectHandler(resolver, recorder)

	req := httptest.NewRequest(http.MethodGet, "/go/Ab3dEf9h", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://blog.example.com/review")

	rec := doRedirect(h, "Ab3dEf9h", req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "https://example.com/microscope" {
		t.Errorf("location = %q", loc)
	}

	select {
	case hit := <-recorder.recorded:
		// the recorder must get the already-resolved link, not re-resolve it
		if hit.link.ID != 1 {
			t.Errorf("recorded link id = %d, want 1", hit.link.ID)
		}
		if hit.meta.UserAgent != "Mozilla/5.0" {
			t.Errorf("user agent = %q", hit.meta.UserAgent)
		}
		if hit.meta.Referer != "https://blog.example.com/review" {
			t.Errorf("referer = %q", hit.meta.Referer)
		}
	case <-time.After(time.Second):
		t.Fatal("click was never recorded")
	}
}

func TestRedirect_UnknownCode(t *testing.T) {
	resolver := &fakeResolver{links: map[string]domain.Link{}}
	recorder := &fakeRecorder{recorded: make(chan recordedHit, 1)}
	h := NewRedirectHandler(resolver, recorder)

	req := httptest.NewRequest(http.MethodGet, "/go/nope1234", nil)
	rec := doRedirect(h, "nope1234", req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	select {
	case <-recorder.recorded:
		t.Fatal("click recorded for an unknown code")
	default:
	}
}
