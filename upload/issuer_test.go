package upload

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/cloudinary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *cloudinary.Client {
	t.Helper()
	c, err := cloudinary.NewClient("demo", "key", "secret")
	require.NoError(t, err)
	return c
}

// staticSigner reports fixed credentials and fails to sign without a secret.
type staticSigner struct {
	cloudName, apiKey, secret string
}

func (s staticSigner) Sign(params url.Values) (string, error) {
	if s.secret == "" {
		return "", errors.New("no secret")
	}
	return "sig-" + params.Get("folder"), nil
}

func (s staticSigner) CloudName() string { return s.cloudName }
func (s staticSigner) APIKey() string    { return s.apiKey }

func fixedIssuer(signer Signer, unix int64) *Issuer {
	i := NewIssuer(signer)
	i.now = func() time.Time { return time.Unix(unix, 0) }
	return i
}

func TestIssue_Success(t *testing.T) {
	client := newClient(t)

	sig, err := fixedIssuer(client, 1700000000).Issue("docs", "raw")
	require.NoError(t, err)

	expected, err := client.Sign(url.Values{
		"folder":        {"docs"},
		"resource_type": {"raw"},
		"timestamp":     {"1700000000"},
	})
	require.NoError(t, err)

	assert.Equal(t, &Signature{
		Signature:    expected,
		Timestamp:    1700000000,
		CloudName:    "demo",
		APIKey:       "key",
		Folder:       "docs",
		ResourceType: "raw",
	}, sig)
}

func TestIssue_DefaultsToAuto(t *testing.T) {
	client := newClient(t)

	sig, err := fixedIssuer(client, 1).Issue("docs", "")
	require.NoError(t, err)
	assert.Equal(t, "auto", sig.ResourceType)
}

func TestIssue_Deterministic(t *testing.T) {
	client := newClient(t)

	a, err := fixedIssuer(client, 1700000000).Issue("docs", "image")
	require.NoError(t, err)
	b, err := fixedIssuer(client, 1700000000).Issue("docs", "image")
	require.NoError(t, err)
	assert.Equal(t, a.Signature, b.Signature)

	for _, other := range []func() (*Signature, error){
		func() (*Signature, error) { return fixedIssuer(client, 1700000001).Issue("docs", "image") },
		func() (*Signature, error) { return fixedIssuer(client, 1700000000).Issue("photos", "image") },
		func() (*Signature, error) { return fixedIssuer(client, 1700000000).Issue("docs", "raw") },
	} {
		sig, err := other()
		require.NoError(t, err)
		assert.NotEqual(t, a.Signature, sig.Signature)
	}
}

func TestIssue_Validation(t *testing.T) {
	client := newClient(t)
	issuer := NewIssuer(client)

	for _, tc := range []struct{ folder, resourceType string }{
		{"", "auto"},
		{"My Folder", "auto"},
		{"docs", "pdf"},
	} {
		_, err := issuer.Issue(tc.folder, tc.resourceType)
		assert.True(t, api.IsKind(err, api.KindValidation), "%+v", tc)
	}
}

func TestIssue_MissingConfiguration(t *testing.T) {
	for _, signer := range []staticSigner{
		{cloudName: "", apiKey: "key", secret: "secret"},
		{cloudName: "demo", apiKey: "", secret: "secret"},
		{cloudName: "demo", apiKey: "key", secret: ""},
	} {
		_, err := NewIssuer(signer).Issue("docs", "auto")
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindInternal))
		assert.Equal(t, 500, api.AsError(err).Status())
	}
}
