package peers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map"
)

var ErrInvalidAddress = errors.New("invalid peer address")

// Normalize reduces a peer address to the host:port form used as its
// identity. A missing scheme means http, so "10.0.0.2:5000" and
// "http://10.0.0.2:5000/" are the same peer.
func Normalize(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidAddress, address, err)
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%w %q: missing host", ErrInvalidAddress, address)
	}
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return "", fmt.Errorf("%w %q: bad port", ErrInvalidAddress, address)
		}
	} else if strings.HasSuffix(u.Host, ":") {
		return "", fmt.Errorf("%w %q: bad port", ErrInvalidAddress, address)
	}

	return strings.ToLower(u.Host), nil
}

// PeerSet is the set of known peers in registration order. It is not safe for
// concurrent use; the ledger lock guards it.
type PeerSet struct {
	peers *orderedmap.OrderedMap
}

func NewPeerSet() *PeerSet {
	return &PeerSet{peers: orderedmap.New()}
}

// Add registers every address or none: if any address fails to normalize the
// set is left untouched.
func (ps *PeerSet) Add(addresses []string) error {
	normalized := make([]string, 0, len(addresses))
	for _, address := range addresses {
		addr, err := Normalize(address)
		if err != nil {
			return err
		}
		normalized = append(normalized, addr)
	}

	for _, addr := range normalized {
		if _, ok := ps.peers.Get(addr); !ok {
			ps.peers.Set(addr, struct{}{})
		}
	}
	return nil
}

func (ps *PeerSet) Contains(address string) bool {
	addr, err := Normalize(address)
	if err != nil {
		return false
	}
	_, ok := ps.peers.Get(addr)
	return ok
}

// List returns the peers in registration order.
func (ps *PeerSet) List() []string {
	list := make([]string, 0, ps.peers.Len())
	for pair := ps.peers.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Key.(string))
	}
	return list
}

func (ps *PeerSet) Len() int {
	return ps.peers.Len()
}
