package wac

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itme/solidacl/internal/rdf"
)

// fakeFetcher serves canned metadata and datasets. Missing entries behave
// like 404s; explicit errors win over canned entries.
type fakeFetcher struct {
	mu       sync.Mutex
	metas    map[string]*Meta
	datasets map[string][]rdf.Triple
	errs     map[string]error
	fetches  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		metas:    make(map[string]*Meta),
		datasets: make(map[string][]rdf.Triple),
		errs:     make(map[string]error),
	}
}

func (f *fakeFetcher) addResource(url, aclURL string) {
	f.metas[url] = &Meta{URL: url, IsContainer: strings.HasSuffix(url, "/"), AclURL: aclURL}
}

func (f *fakeFetcher) addDataset(url string, triples []rdf.Triple) {
	f.datasets[url] = triples
}

func (f *fakeFetcher) record(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, url)
}

func (f *fakeFetcher) Metadata(ctx context.Context, url string) (*Meta, error) {
	f.record(url)
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	meta, ok := f.metas[url]
	if !ok {
		return nil, fmt.Errorf("meta %s: %w", url, ErrNotFound)
	}
	return meta, nil
}

func (f *fakeFetcher) Dataset(ctx context.Context, url string) (*RuleSet, error) {
	f.record(url)
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	triples, ok := f.datasets[url]
	if !ok {
		return nil, fmt.Errorf("dataset %s: %w", url, ErrNotFound)
	}
	return ParseRuleSet(url, triples), nil
}

func TestContainerOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://pod.example/a/b/", "https://pod.example/a/"},
		{"https://pod.example/a/b/c", "https://pod.example/a/b/"},
		{"https://pod.example/a", "https://pod.example/"},
	}
	for _, tc := range tests {
		got, err := ContainerOf(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "container of %s", tc.in)
	}

	_, err := ContainerOf("https://pod.example/")
	assert.Error(t, err)
}

func TestIsRoot(t *testing.T) {
	assert.True(t, IsRoot("https://pod.example/"))
	assert.True(t, IsRoot("https://pod.example"))
	assert.False(t, IsRoot("https://pod.example/a"))
	assert.False(t, IsRoot("https://pod.example/a/"))
}

func TestResolveOwnACLWins(t *testing.T) {
	f := newFakeFetcher()
	f.addResource(testResource, testACLURL)
	f.addDataset(testACLURL, authTriples(testACLURL+"#own",
		tr(testACLURL+"#own", rdf.ACLAccessTo, testResource),
		tr(testACLURL+"#own", rdf.ACLAgent, agentAlice),
		tr(testACLURL+"#own", rdf.ACLMode, rdf.ModeWrite),
	))

	res, err := ResolveACL(context.Background(), f, testResource)
	require.NoError(t, err)
	require.NotNil(t, res.ResourceAcl)
	assert.Nil(t, res.FallbackAcl)
	assert.Equal(t, testResource, res.ResourceAcl.AccessTo)

	// no ancestor is consulted
	assert.NotContains(t, f.fetches, testContainer)
}

func TestResolveOwnACLWriteImpliesAppend(t *testing.T) {
	f := newFakeFetcher()
	f.addResource(testResource, testACLURL)
	f.addDataset(testACLURL, authTriples(testACLURL+"#own",
		tr(testACLURL+"#own", rdf.ACLAccessTo, testResource),
		tr(testACLURL+"#own", rdf.ACLAgent, agentAlice),
		tr(testACLURL+"#own", rdf.ACLMode, rdf.ModeWrite),
	))

	modes, resolved, err := ResolveAccess(context.Background(), f, testResource, Agent(agentAlice))
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Equal(t, AccessModes{Append: true, Write: true}, modes)
}

func TestResolveFallbackPublicRead(t *testing.T) {
	containerACL := testContainer + ".acl"

	f := newFakeFetcher()
	f.addResource(testResource, testACLURL) // advertised but nothing there
	f.addResource(testContainer, containerACL)
	f.addDataset(containerACL, authTriples(containerACL+"#default",
		tr(containerACL+"#default", rdf.ACLDefault, testContainer),
		tr(containerACL+"#default", rdf.ACLAgentClass, rdf.FOAFAgent),
		tr(containerACL+"#default", rdf.ACLMode, rdf.ModeRead),
	))

	res, err := ResolveACL(context.Background(), f, testResource)
	require.NoError(t, err)
	assert.Nil(t, res.ResourceAcl)
	require.NotNil(t, res.FallbackAcl)
	assert.Equal(t, testContainer, res.FallbackAcl.AccessTo)

	modes, resolved := AccessFor(res, Public())
	assert.True(t, resolved)
	assert.Equal(t, AccessModes{Read: true}, modes)

	// the same walk through ResolveAccess
	modes, resolved, err = ResolveAccess(context.Background(), f, testResource, Public())
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Equal(t, AccessModes{Read: true}, modes)
}

func TestResolveWalksPastMissingACLs(t *testing.T) {
	base := "https://pod.example"
	deep := base + "/a/b/c"

	f := newFakeFetcher()
	f.addResource(deep, deep+".acl")
	f.addResource(base+"/a/b/", base+"/a/b/.acl")
	f.addResource(base+"/a/", base+"/a/.acl")
	rootACL := base + "/a/.acl"
	f.addDataset(rootACL, authTriples(rootACL+"#default",
		tr(rootACL+"#default", rdf.ACLDefault, base+"/a/"),
		tr(rootACL+"#default", rdf.ACLAgent, agentAlice),
		tr(rootACL+"#default", rdf.ACLMode, rdf.ModeRead),
	))

	res, err := ResolveACL(context.Background(), f, deep)
	require.NoError(t, err)
	require.NotNil(t, res.FallbackAcl)
	assert.Equal(t, base+"/a/", res.FallbackAcl.AccessTo)
}

func TestResolveRootUnresolved(t *testing.T) {
	root := "https://pod.example/"

	f := newFakeFetcher()
	f.addResource(root, "")

	res, err := ResolveACL(context.Background(), f, root)
	require.NoError(t, err)
	assert.Nil(t, res.ResourceAcl)
	assert.Nil(t, res.FallbackAcl)

	_, resolved := AccessFor(res, Public())
	assert.False(t, resolved)
}

func TestResolveHiddenPointerUnresolved(t *testing.T) {
	f := newFakeFetcher()
	f.addResource(testResource, "")
	f.addResource(testContainer, "") // acting principal cannot see the link

	res, err := ResolveACL(context.Background(), f, testResource)
	require.NoError(t, err)
	assert.Nil(t, res.ResourceAcl)
	assert.Nil(t, res.FallbackAcl)

	modes, resolved := AccessFor(res, Agent(agentAlice))
	assert.False(t, resolved, "indeterminate access must not read as no access")
	assert.True(t, modes.IsEmpty())
}

func TestResolveTransportErrorPropagates(t *testing.T) {
	f := newFakeFetcher()
	f.addResource(testResource, "")
	f.errs[testContainer] = ErrForbidden

	_, err := ResolveACL(context.Background(), f, testResource)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveACLFetchErrorPropagates(t *testing.T) {
	f := newFakeFetcher()
	f.addResource(testResource, testACLURL)
	f.errs[testACLURL] = errors.New("boom")

	_, err := ResolveACL(context.Background(), f, testResource)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolveFallbackPrecedence(t *testing.T) {
	// the resource's own ACL governs even when the container defaults say more
	containerACL := testContainer + ".acl"

	f := newFakeFetcher()
	f.addResource(testResource, testACLURL)
	f.addDataset(testACLURL, authTriples(testACLURL+"#own",
		tr(testACLURL+"#own", rdf.ACLAccessTo, testResource),
		tr(testACLURL+"#own", rdf.ACLAgent, agentAlice),
		tr(testACLURL+"#own", rdf.ACLMode, rdf.ModeRead),
	))
	f.addResource(testContainer, containerACL)
	f.addDataset(containerACL, authTriples(containerACL+"#default",
		tr(containerACL+"#default", rdf.ACLDefault, testContainer),
		tr(containerACL+"#default", rdf.ACLAgentClass, rdf.FOAFAgent),
		tr(containerACL+"#default", rdf.ACLMode, rdf.ModeControl),
	))

	modes, resolved, err := ResolveAccess(context.Background(), f, testResource, Public())
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.True(t, modes.IsEmpty(), "ancestor defaults must be ignored when a resource acl exists")
}

func TestResolveAll(t *testing.T) {
	containerACL := testContainer + ".acl"

	f := newFakeFetcher()
	f.addResource(testResource, testACLURL)
	f.addDataset(testACLURL, authTriples(testACLURL+"#own",
		tr(testACLURL+"#own", rdf.ACLAccessTo, testResource),
		tr(testACLURL+"#own", rdf.ACLAgentClass, rdf.FOAFAgent),
		tr(testACLURL+"#own", rdf.ACLMode, rdf.ModeRead),
	))
	other := testContainer + "other"
	f.addResource(other, other+".acl")
	f.addResource(testContainer, containerACL)
	f.addDataset(containerACL, authTriples(containerACL+"#default",
		tr(containerACL+"#default", rdf.ACLDefault, testContainer),
		tr(containerACL+"#default", rdf.ACLAgentClass, rdf.FOAFAgent),
		tr(containerACL+"#default", rdf.ACLMode, rdf.ModeAppend),
	))

	results, err := ResolveAll(context.Background(), f, []string{testResource, other}, Public())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, AccessModes{Read: true}, results[0].Modes)
	assert.Equal(t, AccessModes{Append: true}, results[1].Modes)
	assert.True(t, results[0].Resolved)
	assert.True(t, results[1].Resolved)
}
