package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultLinkedInURL = "https://www.linkedin.com"
	searchPath         = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	// PageSize is how many cards one guest search page returns.
	PageSize  = 25
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var (
	// ErrRateLimited means LinkedIn kept answering 429 after every retry.
	ErrRateLimited = errors.New("linkedin rate limited")
	// ErrNoDescription means the job page had no description section.
	ErrNoDescription = errors.New("job description not found")
)

// LinkedInSource scrapes the public jobs-guest endpoints.
type LinkedInSource struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// SourceOption customizes a LinkedInSource.
type SourceOption func(*LinkedInSource)

// WithBaseURL points searches at another host, mostly for tests.
func WithBaseURL(u string) SourceOption {
	return func(s *LinkedInSource) { s.http.SetBaseURL(strings.TrimRight(u, "/")) }
}

// WithBackoff sets the wait between 429 retries.
func WithBackoff(wait, maxWait time.Duration) SourceOption {
	return func(s *LinkedInSource) { s.http.SetRetryWaitTime(wait).SetRetryMaxWaitTime(maxWait) }
}

// NewLinkedInSource paces outbound requests at rps (1/s when rps <= 0).
func NewLinkedInSource(rps float64, opts ...SourceOption) *LinkedInSource {
	if rps <= 0 {
		rps = 1
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	s := &LinkedInSource{
		http: resty.New().
			SetBaseURL(defaultLinkedInURL).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept-Language", "en-US,en;q=0.9").
			SetTimeout(20 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err == nil && r != nil && r.StatusCode() == http.StatusTooManyRequests
			}),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
	// Every attempt, retries included, waits for a token.
	s.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		return s.limiter.Wait(r.Context())
	})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search fetches one page of listing cards.
func (s *LinkedInSource) Search(ctx context.Context, q Query) ([]Job, error) {
	params := map[string]string{
		"keywords": strings.TrimSpace(q.Keywords),
		"start":    strconv.Itoa(PageSize * max(q.Page, 0)),
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		params["location"] = loc
	}
	if wt := workTypeFilter(q.WorkType); wt != "" {
		params["f_WT"] = wt
	}
	body, err := s.get(ctx, searchPath, params)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	return parseCards(doc), nil
}

// Describe fetches a job page and returns its description and criteria.
func (s *LinkedInSource) Describe(ctx context.Context, jobURL string) (string, map[string]string, error) {
	body, err := s.get(ctx, jobURL, nil)
	if err != nil {
		return "", nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("parse job page: %w", err)
	}
	return parseDescription(doc)
}

func (s *LinkedInSource) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	req := s.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("linkedin request: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case code < 200 || code >= 300:
		return nil, fmt.Errorf("linkedin http status %d", code)
	}
	return resp.Body(), nil
}

func workTypeFilter(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case WorkTypeOnsite, "on-site", "1":
		return "1"
	case WorkTypeRemote, "2":
		return "2"
	case WorkTypeHybrid, "3":
		return "3"
	default:
		return ""
	}
}

func parseCards(doc *goquery.Document) []Job {
	var out []Job
	doc.Find("li > div.base-card").Each(func(_ int, card *goquery.Selection) {
		link, _ := card.Find("a.base-card__full-link").Attr("href")
		link = strings.TrimSpace(link)
		urn, _ := card.Attr("data-entity-urn")
		id := jobID(urn, link)
		if id == "" {
			return
		}
		company := card.Find(".hidden-nested-link").First()
		companyURL, _ := company.Attr("href")
		posted, _ := card.Find("time").Attr("datetime")
		out = append(out, Job{
			ID:         id,
			Title:      squash(card.Find("[class*=_title]").First().Text()),
			Company:    squash(company.Text()),
			CompanyURL: stripQuery(companyURL),
			Location:   squash(card.Find(".job-search-card__location").Text()),
			URL:        stripQuery(link),
			PostedAt:   strings.TrimSpace(posted),
		})
	})
	return out
}

// jobID prefers the entity URN and falls back to the trailing digits of the link.
func jobID(urn, link string) string {
	if i := strings.LastIndex(urn, ":"); i >= 0 && isDigits(urn[i+1:]) {
		return urn[i+1:]
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	seg := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if i := strings.LastIndex(seg, "-"); i >= 0 {
		seg = seg[i+1:]
	}
	if isDigits(seg) {
		return seg
	}
	return ""
}

func parseDescription(doc *goquery.Document) (string, map[string]string, error) {
	section := doc.Find("section.core-section-container.description .core-section-container__content")
	if section.Length() == 0 {
		section = doc.Find("section.description .core-section-container__content")
	}
	criteria := make(map[string]string)
	section.Find("ul.description__job-criteria-list li.description__job-criteria-item").Each(func(_ int, li *goquery.Selection) {
		header := squash(li.Find("h3.description__job-criteria-subheader").Text())
		value := squash(li.Find("span.description__job-criteria-text").Text())
		if header != "" && value != "" {
			criteria[header] = value
		}
	})

	markup := section.Find("section.show-more-less-html .show-more-less-html__markup")
	if markup.Length() == 0 {
		markup = doc.Find(".show-more-less-html__markup")
	}
	var b strings.Builder
	renderText(&b, markup.First())
	desc := tidyLines(b.String())
	if desc == "" {
		return "", criteria, ErrNoDescription
	}
	return desc, criteria, nil
}

// renderText walks nodes in order, keeping paragraph and list breaks.
func renderText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			if t := squash(s.Text()); t != "" {
				b.WriteString(t)
				b.WriteString(" ")
			}
		case "br":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
			renderText(b, s)
			b.WriteString("\n")
		case "p", "div", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n")
			renderText(b, s)
			b.WriteString("\n")
		default:
			renderText(b, s)
		}
	})
}

func tidyLines(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
