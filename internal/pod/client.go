package pod

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/imroc/req/v3"

	"github.com/itme/solidacl/internal/version"
	"github.com/itme/solidacl/internal/wac"
)

const (
	headerLink        = "Link"
	relACL            = "acl"
	contentTypeJSON   = "application/json"
	defaultCacheSize  = 256
	defaultRetryCount = 3
)

var userAgent = fmt.Sprintf("solidacl/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// HTTPError is a transport failure that is neither "not found" nor
// "forbidden": the caller gets the status and reason to tell a server error
// from anything else.
type HTTPError struct {
	Status int
	Reason string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("pod: http %d: %s", e.Status, e.Reason)
}

// Client talks to a pod over HTTP. It implements wac.Store. Metadata
// responses are cached; any write purges the cache. The client holds no
// other cross-call state, so independent operations may share it freely.
type Client struct {
	http *req.Client
	meta *lru.Cache[string, wac.Meta]
}

type Option func(*Client)

// WithBearerToken authenticates every request with the given token. The
// token is passed through opaquely.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.http.SetCommonBearerAuthToken(token)
	}
}

// WithTimeout bounds each round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// New creates a pod client.
func New(opts ...Option) (*Client, error) {
	cache, err := lru.New[string, wac.Meta](defaultCacheSize)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http: req.C().
			SetCommonRetryCount(defaultRetryCount).
			SetCommonRetryFixedInterval(1 * time.Second).
			SetUserAgent(userAgent).
			SetJsonMarshal(jsonMarshal).
			SetJsonUnmarshal(jsonUnmarshal),
		meta: cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Metadata describes a resource with one HEAD round trip. The ACL pointer
// comes from the Link rel="acl" response header, resolved against the
// resource URL; its absence means the acting principal may not see it.
func (c *Client) Metadata(ctx context.Context, resourceURL string) (*wac.Meta, error) {
	if cached, ok := c.meta.Get(resourceURL); ok {
		return &cached, nil
	}

	resp, err := c.http.R().SetContext(ctx).Head(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", resourceURL, err)
	}
	if err := statusError(resp); err != nil {
		return nil, fmt.Errorf("head %s: %w", resourceURL, err)
	}

	aclURL, err := aclLink(resourceURL, resp.Header.Values(headerLink))
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", resourceURL, err)
	}

	meta := wac.Meta{
		URL:         resourceURL,
		IsContainer: isContainerURL(resourceURL),
		AclURL:      aclURL,
	}
	c.meta.Add(resourceURL, meta)
	return &meta, nil
}

// Dataset fetches and parses an ACL document.
func (c *Client) Dataset(ctx context.Context, aclURL string) (*wac.RuleSet, error) {
	var body DatasetBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&body).
		Get(aclURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", aclURL, err)
	}
	if err := statusError(resp); err != nil {
		return nil, fmt.Errorf("get %s: %w", aclURL, err)
	}

	triples, err := FromRecords(body.Triples)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", aclURL, err)
	}
	return wac.ParseRuleSet(aclURL, triples), nil
}

// Persist writes a rule set: a PATCH carrying the change log, or a PUT
// replacing the document wholesale.
func (c *Client) Persist(ctx context.Context, aclURL string, rs *wac.RuleSet, asPatch bool) error {
	r := c.http.R().SetContext(ctx).SetContentType(contentTypeJSON)

	var resp *req.Response
	var err error
	if asPatch {
		log := rs.ChangeLog()
		resp, err = r.SetBody(&PatchBody{
			Additions: ToRecords(log.Additions),
			Deletions: ToRecords(log.Deletions),
		}).Patch(aclURL)
	} else {
		resp, err = r.SetBody(&DatasetBody{Triples: ToRecords(rs.Triples())}).Put(aclURL)
	}
	if err != nil {
		return fmt.Errorf("persist %s: %w", aclURL, err)
	}
	if err := statusError(resp); err != nil {
		return fmt.Errorf("persist %s: %w", aclURL, err)
	}

	c.meta.Purge()
	return nil
}

// Delete removes an ACL document.
func (c *Client) Delete(ctx context.Context, aclURL string) error {
	resp, err := c.http.R().SetContext(ctx).Delete(aclURL)
	if err != nil {
		return fmt.Errorf("delete %s: %w", aclURL, err)
	}
	if err := statusError(resp); err != nil {
		return fmt.Errorf("delete %s: %w", aclURL, err)
	}

	c.meta.Purge()
	return nil
}

// statusError maps response status to the core's error taxonomy.
func statusError(resp *req.Response) error {
	switch {
	case resp.IsSuccessState():
		return nil
	case resp.StatusCode == 404:
		return wac.ErrNotFound
	case resp.StatusCode == 403 || resp.StatusCode == 401:
		return wac.ErrForbidden
	default:
		return &HTTPError{Status: resp.StatusCode, Reason: strings.TrimSpace(resp.String())}
	}
}

func isContainerURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Path, "/")
}

// aclLink extracts the acl relation from Link headers, resolved against the
// resource URL. Empty when no acl link is advertised.
func aclLink(base string, linkHeaders []string) (string, error) {
	for _, header := range linkHeaders {
		for _, link := range strings.Split(header, ",") {
			target, rel, ok := parseLink(link)
			if !ok || rel != relACL {
				continue
			}
			baseURL, err := url.Parse(base)
			if err != nil {
				return "", err
			}
			targetURL, err := url.Parse(target)
			if err != nil {
				return "", err
			}
			return baseURL.ResolveReference(targetURL).String(), nil
		}
	}
	return "", nil
}

// parseLink parses one `<target>; rel="value"` link-header entry.
func parseLink(link string) (target, rel string, ok bool) {
	parts := strings.Split(link, ";")
	head := strings.TrimSpace(parts[0])
	if !strings.HasPrefix(head, "<") || !strings.HasSuffix(head, ">") {
		return "", "", false
	}
	target = strings.Trim(head, "<>")
	for _, param := range parts[1:] {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		rel = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return target, rel, true
}

var _ wac.Store = (*Client)(nil)
