package client

import (
	"context"
	"net/http"
)

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts *Options) *Result {
	return c.Do(ctx, http.MethodGet, path, opts)
}

// Post performs a POST request with the given body.
func (c *Client) Post(ctx context.Context, path string, body any, opts *Options) *Result {
	return c.Do(ctx, http.MethodPost, path, withBody(opts, body))
}

// Put performs a PUT request with the given body.
func (c *Client) Put(ctx context.Context, path string, body any, opts *Options) *Result {
	return c.Do(ctx, http.MethodPut, path, withBody(opts, body))
}

// Patch performs a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts *Options) *Result {
	return c.Do(ctx, http.MethodPatch, path, withBody(opts, body))
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts *Options) *Result {
	return c.Do(ctx, http.MethodDelete, path, opts)
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, opts *Options) *Result {
	return c.Do(ctx, http.MethodHead, path, opts)
}

func withBody(opts *Options, body any) *Options {
	if opts == nil {
		return &Options{Body: body}
	}
	cp := *opts
	cp.Body = body
	return &cp
}
