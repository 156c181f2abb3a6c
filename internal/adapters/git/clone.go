// Package git implements the ports.GitClient interface using go-git.
package git

import (
	"context"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Client clones grammar repositories with go-git. Stateless; the zero
// value is ready to use.
type Client struct{}

// NewClient returns a go-git backed clone client.
func NewClient() *Client {
	return &Client{}
}

// Clone fetches url into dest. Depth 1: provisioning only needs the tip
// of the default branch, not history. Errors (network, auth, missing repo)
// propagate unchanged.
func (c *Client) Clone(ctx context.Context, url, dest string) error {
	_, err := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}
