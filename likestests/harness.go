package likestests

import (
	"math/rand"
	"time"

	"github.com/vkqa/likes-contract-tests/session"
	"github.com/vkqa/likes-contract-tests/vkapi"
)

const defaultRequestTimeout = time.Second * 30

// Harness is everything the scenarios share for a run: the API client and the one credential
// that every call is made with.
type Harness struct {
	client         *vkapi.Client
	credential     session.Credential
	requestTimeout time.Duration
	rand           *rand.Rand
}

// NewHarness creates a Harness. A zero requestTimeout means 30 seconds.
func NewHarness(client *vkapi.Client, credential session.Credential, requestTimeout time.Duration) *Harness {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Harness{
		client:         client,
		credential:     credential,
		requestTimeout: requestTimeout,
		rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *Harness) Credential() session.Credential {
	return h.credential
}
