package publish

import (
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// tokenAuth builds HTTP basic auth from the token held in the environment
// variable named by env. It returns nil when env is empty or unset so that
// local and SSH remotes work without credentials.
func tokenAuth(env string) transport.AuthMethod {
	if env == "" {
		return nil
	}
	token := strings.TrimSpace(os.Getenv(env))
	if token == "" {
		return nil
	}
	// Most Git hosting services accept any username alongside a token.
	return &http.BasicAuth{Username: "token", Password: token}
}
