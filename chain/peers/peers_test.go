package peers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// go test -v -run=TestNormalize
func TestNormalize(t *testing.T) {
	valid := map[string]string{
		"http://192.168.0.5:5000":  "192.168.0.5:5000",
		"192.168.0.5:5000":         "192.168.0.5:5000",
		"http://192.168.0.5:5000/": "192.168.0.5:5000",
		"https://Node.Example:443": "node.example:443",
		" localhost:5001 ":         "localhost:5001",
		"http://[::1]:5000/chain":  "[::1]:5000",
		"peer.example":             "peer.example",
	}
	for in, want := range valid {
		got, err := Normalize(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	invalid := []string{
		"",
		"   ",
		"http://",
		"http://host:notaport",
		"host:70000",
		"host:0",
		"http://host:",
		"http://:5000",
	}
	for _, in := range invalid {
		_, err := Normalize(in)
		require.ErrorIs(t, err, ErrInvalidAddress, in)
	}
}

// go test -v -run=TestPeerSetAdd
func TestPeerSetAdd(t *testing.T) {
	ps := NewPeerSet()
	require.NoError(t, ps.Add([]string{"http://b:5000", "a:5000", "B:5000"}))
	require.Equal(t, []string{"b:5000", "a:5000"}, ps.List())
	require.Equal(t, 2, ps.Len())
	require.True(t, ps.Contains("http://a:5000"))
	require.False(t, ps.Contains("c:5000"))

	require.NoError(t, ps.Add(nil))
	require.Equal(t, 2, ps.Len())
}

// go test -v -run=TestPeerSetAddAllOrNothing
func TestPeerSetAddAllOrNothing(t *testing.T) {
	ps := NewPeerSet()
	require.NoError(t, ps.Add([]string{"a:5000"}))

	err := ps.Add([]string{"c:5000", "http://bad:port", "d:5000"})
	require.ErrorIs(t, err, ErrInvalidAddress)
	require.Equal(t, []string{"a:5000"}, ps.List())
}
