package discovery

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	shutdown bool
}

func (f *fakeServer) Shutdown() { f.shutdown = true }

type registerCall struct {
	instance, service, domain string
	port                      int
	text                      []string
	ttl                       time.Duration
}

func fakeRegister(calls *[]registerCall, servers *[]*fakeServer, err error) RegisterFunc {
	return func(instance, service, domain string, port int, text []string, _ []net.Interface, ttl time.Duration) (Registration, error) {
		*calls = append(*calls, registerCall{instance, service, domain, port, text, ttl})
		if err != nil {
			return nil, err
		}

		s := &fakeServer{}
		*servers = append(*servers, s)

		return s, nil
	}
}

func TestAdvertiser(t *testing.T) {
	t.Parallel()

	var (
		calls   []registerCall
		servers []*fakeServer
	)

	a := &Advertiser{register: fakeRegister(&calls, &servers, nil)}

	require.NoError(t, a.Advertise(Config{Port: 8080, Text: map[string]string{"path": "/", "version": "1"}}))
	require.Len(t, calls, 1)
	assert.Equal(t, registerCall{
		instance: "intervals",
		service:  ServiceType,
		domain:   Domain,
		port:     8080,
		text:     []string{"path=/", "version=1"},
		ttl:      DefaultTTL,
	}, calls[0])

	t.Run("re-advertising replaces the Registration", func(t *testing.T) {
		require.NoError(t, a.Advertise(Config{Instance: "gym", Port: 9090}))
		require.Len(t, servers, 2)
		assert.True(t, servers[0].shutdown)
		assert.False(t, servers[1].shutdown)
		assert.Equal(t, "gym", calls[1].instance)
	})

	t.Run("stop", func(t *testing.T) {
		a.Stop()
		assert.True(t, servers[1].shutdown)
		a.Stop()
	})
}

func TestAdvertiser_Errors(t *testing.T) {
	t.Parallel()

	var (
		calls   []registerCall
		servers []*fakeServer
	)

	a := &Advertiser{register: fakeRegister(&calls, &servers, errors.New("no multicast"))}

	require.ErrorIs(t, a.Advertise(Config{Port: 0}), ErrInvalidPort)
	assert.Empty(t, calls)

	err := a.Advertise(Config{Port: 8080})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no multicast")
}

func TestAdvertiser_LongInstanceName(t *testing.T) {
	t.Parallel()

	var (
		calls   []registerCall
		servers []*fakeServer
	)

	a := &Advertiser{register: fakeRegister(&calls, &servers, nil)}

	long := "a-very-long-instance-name-that-goes-on-and-on-well-past-the-dns-label-limit"
	require.NoError(t, a.Advertise(Config{Instance: long, Port: 80}))
	assert.Len(t, calls[0].instance, MaxInstanceNameLen)
}

func TestTXT(t *testing.T) {
	t.Parallel()

	txt := EncodeTXT(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []string{"a=1", "b=2"}, txt)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "flag": ""}, DecodeTXT(append(txt, "flag", "=skip")))
}

func TestParsePort(t *testing.T) {
	t.Parallel()

	p, err := ParsePort("8080")
	require.NoError(t, err)
	assert.Equal(t, 8080, p)

	_, err = ParsePort("http")
	require.ErrorIs(t, err, ErrInvalidPort)
}
