package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"leetfriends/models"
)

const graphqlEndpoint = "https://leetcode.com/graphql"

// protocolCallTimeout bounds each in-page protocol call. A hung upstream
// fetch is recovered only by this deadline firing; it surfaces as
// SCRAPE_TIMEOUT rather than holding the page (and a sweep worker slot)
// forever.
const protocolCallTimeout = 30 * time.Second

// profileURL returns the public profile page for a handle. Navigating there
// first gives the page the cookies and origin the upstream checks expect.
func profileURL(handle string) string {
	return "https://leetcode.com/" + url.PathEscape(handle) + "/"
}

// fetchScript runs inside the page. It never lets the fetch exception
// escape: transport failures come back as {status: 0, err: "..."} so the
// Eval itself only fails on browser-level faults.
const fetchScript = `async (endpoint, payload) => {
	try {
		const res = await fetch(endpoint, {
			method: 'POST',
			headers: {
				'Content-Type': 'application/json',
				'Referer': 'https://leetcode.com/'
			},
			body: payload
		});
		return { status: res.status, body: await res.text(), err: '' };
	} catch (e) {
		return { status: 0, body: '', err: String(e) };
	}
}`

// queryGraphQL executes one GraphQL document against the upstream endpoint
// from inside the given page and returns the data payload.
//
// Failures are classified here, at the point of failure: browser faults as
// BROWSER_CONNECTION_LOST / SCRAPE_TIMEOUT, transport and non-2xx responses
// as UPSTREAM_HTTP_ERROR, malformed bodies as UPSTREAM_PARSE_ERROR, GraphQL
// error payloads as UPSTREAM_API_ERROR — except the upstream's "not found"
// wording, which maps to ErrProfileNotFound.
func queryGraphQL(ctx context.Context, page ScrapePage, doc, username string) (json.RawMessage, error) {
	payload, err := json.Marshal(graphqlRequest{
		Query:     doc,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to encode graphql request", err)
	}

	ectx, cancel := context.WithTimeout(ctx, protocolCallTimeout)
	defer cancel()

	res, err := page.Eval(ectx, fetchScript, graphqlEndpoint, string(payload))
	if err != nil {
		return nil, classifyPageError(err, "in-page graphql call failed")
	}

	if msg := res.Get("err").Str(); msg != "" {
		return nil, models.NewScrapeError(models.ErrCodeHTTP, "in-page fetch failed: "+msg, nil)
	}

	return classifyResponse(res.Get("status").Int(), []byte(res.Get("body").Str()))
}

// classifyResponse turns a captured HTTP status and raw body into a data
// payload or a typed failure.
func classifyResponse(status int, body []byte) (json.RawMessage, error) {
	if status < 200 || status >= 300 {
		return nil, models.NewScrapeError(models.ErrCodeHTTP,
			fmt.Sprintf("upstream returned HTTP %d", status), nil)
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeParse, "invalid JSON from upstream", err)
	}

	if len(resp.Errors) > 0 {
		msg := resp.Errors[0].Message
		// Upstream reports missing users through this message. The substring
		// match is fragile — a wording change would reclassify genuine
		// errors as absence — but it is the only signal upstream gives.
		if strings.Contains(strings.ToLower(msg), "not found") {
			return nil, models.ErrProfileNotFound
		}
		return nil, models.NewScrapeError(models.ErrCodeUpstream, "upstream api error: "+msg, nil)
	}

	return resp.Data, nil
}
