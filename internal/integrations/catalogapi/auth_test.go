package catalogapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCredentials(t *testing.T) {
	f := newFakeAPI()
	srv := f.server(t)

	sess, err := ClientCredentials{BaseURL: srv.URL + "/", ClientID: "id", ClientSecret: "secret"}.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", sess.Token)
	assert.Equal(t, srv.URL, sess.BaseURL)
	assert.Equal(t, []string{"POST /oauth/token"}, f.calls)
}

func TestClientCredentialsRejected(t *testing.T) {
	srv := newFakeAPI().server(t)

	_, err := ClientCredentials{BaseURL: srv.URL, ClientID: "id", ClientSecret: "wrong"}.Session(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 401, se.Status)
}

func TestStaticSession(t *testing.T) {
	s, err := StaticSession{Token: "Bearer t", BaseURL: "http://x"}.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t", s.Token)
}
