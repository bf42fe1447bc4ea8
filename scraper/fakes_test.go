package scraper

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ysmood/gson"
)

// fakeResponse is one canned upstream reply.
type fakeResponse struct {
	status int
	body   string
}

// fakePage implements ScrapePage without a browser. Eval dispatches on the
// GraphQL document inside the posted payload.
type fakePage struct {
	mu        sync.Mutex
	prepared  int
	closed    int
	responses map[string]fakeResponse // keyed by query kind: profile/contest/calendar
	evalErrs  map[string]error        // per-kind eval failure
	fetchErrs map[string]string       // per-kind in-page fetch exception
	prepErr   error
}

func (p *fakePage) Prepare(ctx context.Context, profileURL string) error {
	p.mu.Lock()
	p.prepared++
	p.mu.Unlock()
	return p.prepErr
}

func (p *fakePage) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	payload, _ := args[1].(string)
	var req graphqlRequest
	_ = json.Unmarshal([]byte(payload), &req)

	kind := "profile"
	switch {
	case strings.Contains(req.Query, "userContestRanking"):
		kind = "contest"
	case strings.Contains(req.Query, "userCalendar"):
		kind = "calendar"
	}

	if err := p.evalErrs[kind]; err != nil {
		return gson.New(nil), err
	}
	if msg := p.fetchErrs[kind]; msg != "" {
		return gson.New(map[string]any{"status": 0, "body": "", "err": msg}), nil
	}

	resp, ok := p.responses[kind]
	if !ok {
		resp = fakeResponse{status: 200, body: `{"data":null}`}
	}
	return gson.New(map[string]any{
		"status": resp.status,
		"body":   resp.body,
		"err":    "",
	}), nil
}

func (p *fakePage) Close() {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fakeSession implements Session without a browser.
type fakeSession struct {
	mu        sync.Mutex
	pages     []*fakePage
	newPage   func() *fakePage
	ensureErr error
	openErr   error
	openGen   int64 // generation reported when a page is opened
	gen       int64 // generation reported by Generation()
	teardowns int
}

func (s *fakeSession) Ensure(ctx context.Context) error { return s.ensureErr }

func (s *fakeSession) OpenPage(ctx context.Context) (ScrapePage, int64, error) {
	if s.openErr != nil {
		return nil, 0, s.openErr
	}
	page := s.newPage()
	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()
	return page, s.openGen, nil
}

func (s *fakeSession) Teardown() {
	s.mu.Lock()
	s.teardowns++
	s.gen++
	s.mu.Unlock()
}

func (s *fakeSession) Generation() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *fakeSession) teardownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teardowns
}

// Canned upstream bodies shared across tests.
const (
	profileBody = `{"data":{"matchedUser":{"username":"alice","profile":{"realName":"Alice Zhang","ranking":1234},` +
		`"submitStatsGlobal":{"acSubmissionNum":[{"difficulty":"All","count":150},{"difficulty":"Easy","count":80},` +
		`{"difficulty":"Medium","count":50},{"difficulty":"Hard","count":20}]}},` +
		`"recentSubmissionList":[` +
		`{"title":"Two Sum","titleSlug":"two-sum","timestamp":"1700000000","statusDisplay":"Accepted","lang":"golang"},` +
		`{"title":"Add Two Numbers","titleSlug":"add-two-numbers","timestamp":"1699990000","statusDisplay":"Wrong Answer","lang":"python3"},` +
		`{"title":"LRU Cache","titleSlug":"lru-cache","timestamp":"1699980000","statusDisplay":"Accepted","lang":""}]}}`

	contestBody  = `{"data":{"userContestRanking":{"rating":1842.75}}}`
	calendarBody = `{"data":{"matchedUser":{"userCalendar":{"streak":7}}}}`
	notFoundBody = `{"errors":[{"message":"That user was not found."}],"data":null}`
)

func successResponses() map[string]fakeResponse {
	return map[string]fakeResponse{
		"profile":  {status: 200, body: profileBody},
		"contest":  {status: 200, body: contestBody},
		"calendar": {status: 200, body: calendarBody},
	}
}
